// SPDX-License-Identifier: AGPL-3.0-only
package server

import (
	"context"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/ThinkInAIXYZ/go-mcp/server"
)

// ToolDefinition represents a tool that can be registered with the MCP server
type ToolDefinition struct {
	// Name is the name of the tool
	Name string

	// Description is a brief description of what the tool does
	Description string

	// Handler is the function that will be called when the tool is invoked
	Handler func(context.Context, *protocol.CallToolRequest) (*protocol.CallToolResult, error)

	// Parameters is the parameter schema for the tool (can be a struct)
	Parameters interface{}
}

// toolDefinitions lists every tool the server exposes
func (s *MCPServer) toolDefinitions() []ToolDefinition {
	return []ToolDefinition{
		{
			Name:        "add_task",
			Description: "Adds a task with a same-day HH:MM deadline, or replaces the task with the same name and re-arms its reminder",
			Handler:     s.handleAddTask,
			Parameters:  AddTaskParams{},
		},
		{
			Name:        "remove_task",
			Description: "Removes a task by name",
			Handler:     s.handleRemoveTask,
			Parameters:  TaskNameParams{},
		},
		{
			Name:        "list_tasks",
			Description: "Lists all tasks in the order they were added, with whether each reminder has been sent",
			Handler:     s.handleListTasks,
			Parameters:  ListTasksParams{},
		},
		{
			Name:        "check_reminders",
			Description: "Fires the reminder of every task whose deadline has been reached and returns all tasks",
			Handler:     s.handleCheckReminders,
			Parameters:  CheckRemindersParams{},
		},
		{
			Name:        "summarize_pending",
			Description: "Summarizes the tasks to deal with before a cutoff time",
			Handler:     s.handleSummarizePending,
			Parameters:  SummarizeParams{},
		},
	}
}

// registerToolsDeclarative sets up all the MCP tools using a more declarative approach
func (s *MCPServer) registerToolsDeclarative() {
	for _, tool := range s.toolDefinitions() {
		registerToolWithError(s.server, tool)
	}
}

// registerToolWithError registers a tool with error handling
func registerToolWithError(srv *server.Server, def ToolDefinition) {
	tool, err := protocol.NewTool(def.Name, def.Description, def.Parameters)
	if err != nil {
		// parameter structs are static, so this only fails on a programming error
		panic(err)
	}

	srv.RegisterTool(tool, def.Handler)
}
