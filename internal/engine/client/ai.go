package client

import (
	"context"
	"net/http"
)

type askReq struct {
	Query string `json:"query"`
}

type askResp struct {
	Answer string `json:"answer"`
}

// Ask спрашивает у сервера подсказку по каталогу курсов.
func (c *Client) Ask(ctx context.Context, query string) (string, error) {
	var out askResp
	if err := c.do(ctx, http.MethodPost, "/api/v1/ai/ask", askReq{Query: query}, &out); err != nil {
		return "", err
	}
	return out.Answer, nil
}
