package apiclient

import (
	"context"
	"net/url"

	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/model"
)

// Login 以表单编码提交凭证
// POST /auth/login
func (c *Client) Login(ctx context.Context, creds model.Credentials) (*model.TokenPair, error) {
	form := url.Values{}
	form.Set("username", creds.Username)
	form.Set("password", creds.Password)

	var pair model.TokenPair
	if err := c.sendForm(ctx, "/auth/login", form, &pair); err != nil {
		return nil, err
	}
	return &pair, nil
}

// Me 获取当前身份
// GET /users/me
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var u model.User
	if err := c.getJSON(ctx, "/users/me", &u); err != nil {
		return nil, err
	}
	return &u, nil
}
