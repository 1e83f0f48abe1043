package client

import "context"

// ToggleStudentStatus approves (isActive) or rejects a student account.
func (c *Client) ToggleStudentStatus(ctx context.Context, id int, isActive bool) Result {
	body := struct {
		ID       int  `json:"id"`
		IsActive bool `json:"is_active"`
	}{id, isActive}
	return c.postJSON(ctx, "/admin/toggle-student-status", body, MsgToggleFailed)
}

func (c *Client) DeleteResult(ctx context.Context, resultID int) Result {
	body := struct {
		ResultID int `json:"result_id"`
	}{resultID}
	return c.postJSON(ctx, "/admin/delete-result", body, MsgDeleteFailed)
}
