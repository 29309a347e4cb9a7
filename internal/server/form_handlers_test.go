package server

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type filePart struct {
	name string
	data []byte
}

func multipartRequest(t *testing.T, path string, fields map[string]string, files []filePart) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := w.CreateFormFile("attachments", f.name)
		require.NoError(t, err)
		_, err = fw.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func validContactFields() map[string]string {
	return map[string]string{
		"name":    "Ada Lovelace",
		"email":   "ada@example.com",
		"message": "Please quote 100 mounting brackets in mild steel.",
		"locale":  "en",
	}
}

func validRFQFields() map[string]string {
	f := validContactFields()
	f["material"] = "steel"
	f["process"] = "laser-cutting"
	f["quantity"] = "250"
	f["thickness_mm"] = "3.0"
	return f
}

func postForm(t *testing.T, env *testEnv, path string, fields map[string]string, files []filePart) (*http.Response, []byte) {
	t.Helper()
	resp, err := env.app.Test(multipartRequest(t, path, fields, files), -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestSubmitContactSuccess(t *testing.T) {
	env := newTestEnv(t)
	mail := &recordingMailer{}
	env.srv.SetMailer(mail)

	resp, body := postForm(t, env, "/api/forms/contact", validContactFields(), nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var got SubmissionResponse
	decodeJSON(t, body, &got)
	assert.Equal(t, "contact", got.Kind)
	_, err := uuid.Parse(got.ConfirmationID)
	assert.NoError(t, err, "confirmation id should be a uuid")

	// Persisted and retrievable through the repository.
	stored, err := env.srv.submissionRepo.GetByConfirmationID(t.Context(), got.ConfirmationID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", stored.Name)
	assert.Equal(t, "en", stored.Locale)

	assert.Equal(t, 1, mail.count())
}

func TestSubmitContactValidationErrors(t *testing.T) {
	env := newTestEnv(t)

	fields := validContactFields()
	fields["email"] = "not-an-email"
	fields["message"] = "short"

	resp, body := postForm(t, env, "/api/forms/contact", fields, nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var got struct {
		Fields map[string]string `json:"fields"`
	}
	decodeJSON(t, body, &got)
	assert.Contains(t, got.Fields, "email")
	assert.Contains(t, got.Fields, "message")
	assert.NotContains(t, got.Fields, "name")
}

func TestSubmitRFQSuccess(t *testing.T) {
	env := newTestEnv(t)
	env.srv.SetMailer(&recordingMailer{})

	resp, body := postForm(t, env, "/api/forms/rfq", validRFQFields(), nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var got SubmissionResponse
	decodeJSON(t, body, &got)
	assert.Equal(t, "rfq", got.Kind)

	stored, err := env.srv.submissionRepo.GetByConfirmationID(t.Context(), got.ConfirmationID)
	require.NoError(t, err)
	assert.Equal(t, "steel", stored.Material)
	assert.Equal(t, 250, stored.Quantity)
	assert.Equal(t, 3.0, stored.ThicknessMM)
}

func TestSubmitRFQRangeValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		mutate   func(map[string]string)
		badField string
	}{
		{"quantity too high", func(f map[string]string) { f["quantity"] = "100001" }, "quantity"},
		{"quantity not a number", func(f map[string]string) { f["quantity"] = "many" }, "quantity"},
		{"thickness too thin", func(f map[string]string) { f["thickness_mm"] = "0.01" }, "thickness_mm"},
		{"unknown material", func(f map[string]string) { f["material"] = "adamantium" }, "material"},
		{"unknown process", func(f map[string]string) { f["process"] = "origami" }, "process"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := validRFQFields()
			tt.mutate(fields)

			resp, body := postForm(t, env, "/api/forms/rfq", fields, nil)
			require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

			var got struct {
				Fields map[string]string `json:"fields"`
			}
			decodeJSON(t, body, &got)
			assert.Contains(t, got.Fields, tt.badField)
		})
	}
}

func TestSubmitRFQWithAttachment(t *testing.T) {
	env := newTestEnv(t)
	env.srv.SetMailer(&recordingMailer{})

	pdf := []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")
	resp, body := postForm(t, env, "/api/forms/rfq", validRFQFields(),
		[]filePart{{name: "drawing.pdf", data: pdf}})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var got SubmissionResponse
	decodeJSON(t, body, &got)
	assert.Equal(t, 1, got.Attachments)

	stored, err := env.srv.submissionRepo.GetByConfirmationID(t.Context(), got.ConfirmationID)
	require.NoError(t, err)
	require.Len(t, stored.Attachments, 1)
	assert.Equal(t, "drawing.pdf", stored.Attachments[0].Filename)
	assert.Equal(t, "application/pdf", stored.Attachments[0].MediaType)
	assert.Equal(t, int64(len(pdf)), stored.Attachments[0].SizeBytes)
}

func TestSubmitRejectsDisguisedAttachment(t *testing.T) {
	env := newTestEnv(t)

	// An executable script named like a drawing must be refused.
	script := []byte("#!/bin/sh\necho pwned\n")
	resp, body := postForm(t, env, "/api/forms/contact", validContactFields(),
		[]filePart{{name: "drawing.pdf", data: script}})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var got struct {
		Fields map[string]string `json:"fields"`
	}
	decodeJSON(t, body, &got)
	assert.Contains(t, got.Fields, "attachments[0]")
}

func TestSubmitRejectsTooManyAttachments(t *testing.T) {
	env := newTestEnv(t)

	pdf := []byte("%PDF-1.4\ncontent\n")
	files := make([]filePart, 6)
	for i := range files {
		files[i] = filePart{name: "drawing.pdf", data: pdf}
	}

	resp, body := postForm(t, env, "/api/forms/contact", validContactFields(), files)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var got struct {
		Fields map[string]string `json:"fields"`
	}
	decodeJSON(t, body, &got)
	assert.Contains(t, got.Fields, "attachments")
}
