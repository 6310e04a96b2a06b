package api

import (
	"context"
	"errors"
	"net/http"
)

type loginRequest struct {
	Usuario string `json:"usuario"`
	Senha   string `json:"senha"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login authenticates and returns the bearer token. It does not install the
// token on the client; the caller decides whether to persist it first.
func (c *Client) Login(ctx context.Context, usuario, senha string) (string, error) {
	var resp loginResponse
	if err := c.doJSON(ctx, http.MethodPost, loginPath, DefaultTimeout, loginRequest{Usuario: usuario, Senha: senha}, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", errors.New("login response missing token")
	}
	return resp.Token, nil
}
