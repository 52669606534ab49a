package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/model"
)

// ── 用户 ──

// ListUsers GET /users
func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var list []model.User
	if err := c.getJSON(ctx, "/users", &list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetUser GET /users/{id}
func (c *Client) GetUser(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	if err := c.getJSON(ctx, fmt.Sprintf("/users/%d", id), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUser PUT /users/{id}
func (c *Client) UpdateUser(ctx context.Context, id int64, in model.StaffUpdate) (*model.User, error) {
	var u model.User
	if err := c.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/users/%d", id), in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// DeleteUser DELETE /users/{id}
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/users/%d", id))
}

// ── 教师 ──

// ListEnseignants GET /users/enseignants
func (c *Client) ListEnseignants(ctx context.Context) ([]model.Enseignant, error) {
	var list []model.Enseignant
	if err := c.getJSON(ctx, "/users/enseignants", &list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetEnseignant GET /users/enseignants/{id}
func (c *Client) GetEnseignant(ctx context.Context, id int64) (*model.Enseignant, error) {
	var e model.Enseignant
	if err := c.getJSON(ctx, fmt.Sprintf("/users/enseignants/%d", id), &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateEnseignant POST /users/enseignants（后端同时创建 User）
func (c *Client) CreateEnseignant(ctx context.Context, in model.StaffCreate) (*model.Enseignant, error) {
	var e model.Enseignant
	if err := c.sendJSON(ctx, http.MethodPost, "/users/enseignants", in, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// UpdateEnseignant PUT /users/enseignants/{id}
func (c *Client) UpdateEnseignant(ctx context.Context, id int64, in model.StaffUpdate) (*model.Enseignant, error) {
	var e model.Enseignant
	if err := c.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/users/enseignants/%d", id), in, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// DeleteEnseignant DELETE /users/enseignants/{id}
func (c *Client) DeleteEnseignant(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/users/enseignants/%d", id))
}

// ── 公务员 ──

// ListFonctionnaires GET /users/fonctionnaires
func (c *Client) ListFonctionnaires(ctx context.Context) ([]model.Fonctionnaire, error) {
	var list []model.Fonctionnaire
	if err := c.getJSON(ctx, "/users/fonctionnaires", &list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetFonctionnaire GET /users/fonctionnaires/{id}
func (c *Client) GetFonctionnaire(ctx context.Context, id int64) (*model.Fonctionnaire, error) {
	var f model.Fonctionnaire
	if err := c.getJSON(ctx, fmt.Sprintf("/users/fonctionnaires/%d", id), &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// CreateFonctionnaire POST /users/fonctionnaires
func (c *Client) CreateFonctionnaire(ctx context.Context, in model.StaffCreate) (*model.Fonctionnaire, error) {
	var f model.Fonctionnaire
	if err := c.sendJSON(ctx, http.MethodPost, "/users/fonctionnaires", in, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// UpdateFonctionnaire PUT /users/fonctionnaires/{id}
func (c *Client) UpdateFonctionnaire(ctx context.Context, id int64, in model.StaffUpdate) (*model.Fonctionnaire, error) {
	var f model.Fonctionnaire
	if err := c.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/users/fonctionnaires/%d", id), in, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// DeleteFonctionnaire DELETE /users/fonctionnaires/{id}
func (c *Client) DeleteFonctionnaire(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/users/fonctionnaires/%d", id))
}

// UploadFonctionnairePhoto POST /users/fonctionnaires/{id}/upload-photo（multipart 字段 file）
func (c *Client) UploadFonctionnairePhoto(ctx context.Context, id int64, photo File) (*model.Fonctionnaire, error) {
	body, contentType, err := encodeMultipart("file", []File{photo})
	if err != nil {
		return nil, err
	}
	var f model.Fonctionnaire
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/users/fonctionnaires/%d/upload-photo", id), body, contentType, &f); err != nil {
		return nil, err
	}
	return &f, nil
}
