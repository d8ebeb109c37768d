// SPDX-License-Identifier: AGPL-3.0-only
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"

	"github.com/jolks/mcp-remind/internal/errors"
	"github.com/jolks/mcp-remind/internal/model"
)

// AddTaskParams defines parameters for adding a task
type AddTaskParams struct {
	Name     string `json:"name" description:"task name, unique among tasks"`
	Deadline string `json:"deadline" description:"deadline today as HH:MM (24-hour)"`
}

// TaskNameParams holds the name parameter used by remove_task
type TaskNameParams struct {
	Name string `json:"name" description:"the name of the task to remove"`
}

// ListTasksParams defines parameters for listing tasks
type ListTasksParams struct{}

// CheckRemindersParams defines parameters for checking reminders
type CheckRemindersParams struct{}

// SummarizeParams defines parameters for the pending summary
type SummarizeParams struct {
	Cutoff string `json:"cutoff,omitempty" description:"HH:MM cutoff, defaults to the configured summary cutoff"`
}

// taskView is the wire shape of a task in tool responses
type taskView struct {
	Name         string `json:"name"`
	Deadline     string `json:"deadline"`
	ReminderSent bool   `json:"reminder_sent"`
	Status       string `json:"status"`
}

func newTaskView(t model.Task) taskView {
	return taskView{
		Name:         t.Name,
		Deadline:     t.Deadline.String(),
		ReminderSent: t.ReminderSent,
		Status:       t.Status().String(),
	}
}

// handleAddTask adds or replaces a task
func (s *MCPServer) handleAddTask(ctx context.Context, request *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params AddTaskParams
	if err := extractParams(request, &params); err != nil {
		return createErrorResponse(err)
	}

	s.logger.Debugf("Handling add_task request for task %s", params.Name)

	task, err := s.tasks.Add(ctx, params.Name, params.Deadline)
	if err != nil {
		return createErrorResponse(err)
	}

	return createJSONResponse(newTaskView(task))
}

// handleRemoveTask removes a task by name
func (s *MCPServer) handleRemoveTask(ctx context.Context, request *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params TaskNameParams
	if err := extractParams(request, &params); err != nil {
		return createErrorResponse(err)
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return createErrorResponse(errors.InvalidInput("task name is required"))
	}

	s.logger.Debugf("Handling remove_task request for task %s", name)

	if err := s.tasks.Remove(ctx, name); err != nil {
		return createErrorResponse(err)
	}

	return createSuccessResponse(fmt.Sprintf("Task %s removed", name))
}

// handleListTasks lists all tasks
func (s *MCPServer) handleListTasks(ctx context.Context, request *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	s.logger.Debugf("Handling list_tasks request")
	return createTasksResponse(s.tasks.List())
}

// handleCheckReminders runs one reminder check
func (s *MCPServer) handleCheckReminders(ctx context.Context, request *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	s.logger.Debugf("Handling check_reminders request")
	return createTasksResponse(s.scheduler.Tick(ctx))
}

// handleSummarizePending reports the tasks to deal with before a cutoff
func (s *MCPServer) handleSummarizePending(ctx context.Context, request *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params SummarizeParams
	if err := extractParams(request, &params); err != nil {
		return createErrorResponse(err)
	}

	cutoff := s.cutoff
	if strings.TrimSpace(params.Cutoff) != "" {
		tod, err := model.ParseTimeOfDay(params.Cutoff)
		if err != nil {
			return createErrorResponse(errors.InvalidDeadlineFormat(params.Cutoff, err))
		}
		cutoff = tod
	}

	s.logger.Debugf("Handling summarize_pending request before %s", cutoff)

	sum := s.scheduler.SummarizePendingBefore(cutoff)
	views := make([]taskView, 0, len(sum.Tasks))
	for _, t := range sum.Tasks {
		views = append(views, newTaskView(t))
	}
	return createJSONResponse(map[string]interface{}{
		"kind":    sum.Kind,
		"cutoff":  sum.Cutoff,
		"message": sum.Message,
		"tasks":   views,
	})
}

// extractParams extracts parameters from a tool request
func extractParams(request *protocol.CallToolRequest, params interface{}) error {
	if len(request.RawArguments) == 0 {
		return nil
	}
	if err := json.Unmarshal(request.RawArguments, params); err != nil {
		return errors.InvalidInput(fmt.Sprintf("invalid parameters: %v", err))
	}
	return nil
}

// createSuccessResponse creates a success response
func createSuccessResponse(message string) (*protocol.CallToolResult, error) {
	return createJSONResponse(map[string]interface{}{
		"success": true,
		"message": message,
	})
}

// createErrorResponse creates an error response
func createErrorResponse(err error) (*protocol.CallToolResult, error) {
	// Always return the original error as the second return value
	// This ensures MCP protocol error handling works correctly
	return nil, err
}

// createTasksResponse creates a response with multiple tasks
func createTasksResponse(tasks []model.Task) (*protocol.CallToolResult, error) {
	views := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, newTaskView(t))
	}
	return createJSONResponse(views)
}

func createJSONResponse(v interface{}) (*protocol.CallToolResult, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Internal(fmt.Errorf("failed to marshal response: %w", err))
	}

	return &protocol.CallToolResult{
		Content: []protocol.Content{
			&protocol.TextContent{
				Type: "text",
				Text: string(body),
			},
		},
	}, nil
}
