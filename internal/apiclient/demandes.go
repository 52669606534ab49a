package apiclient

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/model"
)

// ListDemandes 全部申请（秘书/管理员视图）
// GET /demandes
func (c *Client) ListDemandes(ctx context.Context) ([]model.Demande, error) {
	var list []model.Demande
	if err := c.getJSON(ctx, "/demandes", &list); err != nil {
		return nil, err
	}
	return list, nil
}

// ListMyDemandes 当前用户自己的申请
// GET /demandes/me
func (c *Client) ListMyDemandes(ctx context.Context) ([]model.Demande, error) {
	var list []model.Demande
	if err := c.getJSON(ctx, "/demandes/me", &list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetDemande GET /demandes/{id}
func (c *Client) GetDemande(ctx context.Context, id int64) (*model.Demande, error) {
	var d model.Demande
	if err := c.getJSON(ctx, fmt.Sprintf("/demandes/%d", id), &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateDemande POST /demandes
func (c *Client) CreateDemande(ctx context.Context, in model.DemandeCreate) (*model.Demande, error) {
	var d model.Demande
	if err := c.sendJSON(ctx, http.MethodPost, "/demandes", in, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// DecideDemande 更新状态与审批意见
// PUT /demandes/{id}
func (c *Client) DecideDemande(ctx context.Context, id int64, in model.DemandeDecision) (*model.Demande, error) {
	var d model.Demande
	if err := c.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/demandes/%d", id), in, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// DeleteDemande DELETE /demandes/{id}
func (c *Client) DeleteDemande(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/demandes/%d", id))
}

// UploadDemandeDocuments POST /demandes/{id}/upload-documents（multipart 字段 files，可重复）
func (c *Client) UploadDemandeDocuments(ctx context.Context, id int64, files []File) ([]model.Document, error) {
	body, contentType, err := encodeMultipart("files", files)
	if err != nil {
		return nil, err
	}
	var docs []model.Document
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/demandes/%d/upload-documents", id), body, contentType, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// Download 附件下载流，调用方负责关闭 Body
type Download struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
	Filename      string
}

// DownloadDocument GET /demandes/{id}/documents/{docId}/download
func (c *Client) DownloadDocument(ctx context.Context, id, docID int64) (*Download, error) {
	req, base, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("/demandes/%d/documents/%d/download", id, docID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "*/*")

	resp, err := c.send(req, base)
	if err != nil {
		return nil, err
	}

	dl := &Download{
		Body:          resp.Body,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
		Filename:      "document-" + strconv.FormatInt(docID, 10),
	}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		dl.Filename = params["filename"]
	}
	if dl.ContentType == "" {
		dl.ContentType = "application/octet-stream"
	}
	return dl, nil
}
