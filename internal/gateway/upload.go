package gateway

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Party selects which signature of a contract an upload sets.
type Party string

const (
	PartyClient     Party = "client"
	PartyContractor Party = "contractor"
)

func (p Party) Valid() bool { return p == PartyClient || p == PartyContractor }

// UploadSignature posts an image as the multipart field "signature" to
// /contracts/{id}/{party}_upload_signature. Only the contractor upload
// carries initials, as "contractor_initials" when not empty. Client initials
// are set when the contract is created.
func (c *Client) UploadSignature(ctx context.Context, contractID int64, party Party, filename string, image []byte, initials string) error {
	if !party.Valid() {
		return fmt.Errorf("unknown signing party %q", party)
	}
	if filename == "" {
		filename = "signature.png"
	}
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("signature", filename)
	if err != nil {
		return err
	}
	if _, err := fw.Write(image); err != nil {
		return err
	}
	if party == PartyContractor && initials != "" {
		if err := mw.WriteField("contractor_initials", initials); err != nil {
			return err
		}
	}
	if err := mw.Close(); err != nil {
		return err
	}

	path := fmt.Sprintf("%s/%d/%s_upload_signature", contractsPath, contractID, party)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req, path, nil)
}

// SendEmail asks the backend to deliver a contract to the client.
func (c *Client) SendEmail(ctx context.Context, email string, contractID int64) error {
	q := url.Values{}
	q.Set("email", email)
	q.Set("contract_id", strconv.FormatInt(contractID, 10))
	path := "/send-email?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), nil)
	if err != nil {
		return err
	}
	return c.do(req, path, nil)
}

// FetchImage downloads a stored signature. ref is an absolute URL or a path
// on the backend host.
func (c *Client) FetchImage(ctx context.Context, ref string) ([]byte, error) {
	target := ref
	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		base, err := url.Parse(c.BaseURL)
		if err != nil {
			return nil, err
		}
		rel, err := url.Parse(ref)
		if err != nil {
			return nil, err
		}
		target = base.ResolveReference(rel).String()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	return c.send(req, "/media")
}
