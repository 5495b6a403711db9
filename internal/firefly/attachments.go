package firefly

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lvu/firemerge/internal/settings"
)

// SettingsAttachmentName is the filename of the per-account settings
// attachment on the Firefly III side.
const SettingsAttachmentName = "firemerge-settings.json"

// Attachment is a file attached to a ledger entity.
type Attachment struct {
	ID       int64
	Filename string
	Title    string
}

type attachmentAttributes struct {
	Filename string `json:"filename"`
	Title    string `json:"title"`
}

// AccountAttachments lists the files attached to an account.
func (c *Client) AccountAttachments(ctx context.Context, accountID int64) ([]Attachment, error) {
	var out []Attachment
	path := fmt.Sprintf("v1/accounts/%d/attachments", accountID)
	err := c.pagedGet(ctx, path, nil, func(item apiItem) error {
		var attrs attachmentAttributes
		if err := item.decode(&attrs); err != nil {
			return err
		}
		out = append(out, Attachment{
			ID:       int64(item.ID),
			Filename: attrs.Filename,
			Title:    attrs.Title,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing attachments of account %d: %w", accountID, err)
	}
	return out, nil
}

// DownloadAttachment fetches an attachment's raw content.
func (c *Client) DownloadAttachment(ctx context.Context, attachmentID int64) ([]byte, error) {
	raw, err := c.request(ctx, http.MethodGet, fmt.Sprintf("v1/attachments/%d/download", attachmentID), nil, nil, "")
	if err != nil {
		return nil, fmt.Errorf("downloading attachment %d: %w", attachmentID, err)
	}
	return raw, nil
}

// UploadAttachment replaces an attachment's content.
func (c *Client) UploadAttachment(ctx context.Context, attachmentID int64, content []byte) error {
	path := fmt.Sprintf("v1/attachments/%d/upload", attachmentID)
	_, err := c.request(ctx, http.MethodPost, path, nil, bytes.NewReader(content), "application/octet-stream")
	if err != nil {
		return fmt.Errorf("uploading attachment %d: %w", attachmentID, err)
	}
	return nil
}

// CreateAccountAttachment registers a new, empty attachment on an
// account; content goes up separately via UploadAttachment.
func (c *Client) CreateAccountAttachment(ctx context.Context, accountID int64, filename, title string) (Attachment, error) {
	payload := map[string]any{
		"filename":        filename,
		"title":           title,
		"attachable_type": "Account",
		"attachable_id":   fmt.Sprint(accountID),
	}
	var resp itemResponse
	if err := c.sendJSON(ctx, http.MethodPost, "v1/attachments", payload, &resp); err != nil {
		return Attachment{}, fmt.Errorf("creating attachment on account %d: %w", accountID, err)
	}
	var attrs attachmentAttributes
	if err := resp.Data.decode(&attrs); err != nil {
		return Attachment{}, err
	}
	return Attachment{
		ID:       int64(resp.Data.ID),
		Filename: attrs.Filename,
		Title:    attrs.Title,
	}, nil
}

func (c *Client) settingsAttachment(ctx context.Context, accountID int64) (*Attachment, error) {
	attachments, err := c.AccountAttachments(ctx, accountID)
	if err != nil {
		return nil, err
	}
	for _, att := range attachments {
		if att.Filename == SettingsAttachmentName {
			return &att, nil
		}
	}
	return nil, nil
}

// AccountSettings loads the account's settings attachment. A missing
// attachment yields nil settings and no error.
func (c *Client) AccountSettings(ctx context.Context, accountID int64) (*settings.AccountSettings, error) {
	att, err := c.settingsAttachment(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if att == nil {
		return nil, nil
	}
	content, err := c.DownloadAttachment(ctx, att.ID)
	if err != nil {
		return nil, err
	}
	var s settings.AccountSettings
	if err := json.Unmarshal(content, &s); err != nil {
		return nil, fmt.Errorf("decoding settings of account %d: %w", accountID, err)
	}
	return &s, nil
}

// StoreAccountSettings writes the settings attachment, creating it on
// first save.
func (c *Client) StoreAccountSettings(ctx context.Context, accountID int64, s settings.AccountSettings) error {
	att, err := c.settingsAttachment(ctx, accountID)
	if err != nil {
		return err
	}
	if att == nil {
		created, err := c.CreateAccountAttachment(ctx, accountID, SettingsAttachmentName, "Firemerge settings")
		if err != nil {
			return err
		}
		att = &created
	}
	content, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding settings of account %d: %w", accountID, err)
	}
	return c.UploadAttachment(ctx, att.ID, content)
}
