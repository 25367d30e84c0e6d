package apiclient

import (
	"context"
	"net/http"

	"github.com/hongminglow/ledgerdash/internal/models/dto"
)

// Login exchanges credentials for a token and the user's fields. The caller
// persists them; LoginData.User splits the token out of the cached record.
func (c *Client) Login(ctx context.Context, req dto.LoginRequest) (dto.LoginData, error) {
	var data dto.LoginData
	if err := c.Do(ctx, http.MethodPost, "/auth/login", "/auth/login", req, &data); err != nil {
		return dto.LoginData{}, err
	}
	return data, nil
}
