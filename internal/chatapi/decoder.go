package chatapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/verte-zerg/agromind/internal/model"
)

// Decoder names.
const (
	DecoderStructured = "structured"
	DecoderRaw        = "raw"
)

// Decoder encodes a prompt into a request body and turns the reply into display text.
type Decoder interface {
	Name() string
	Encode(prompt string) (body io.Reader, contentType string, err error)
	Decode(body []byte) (string, error)
}

// ParseDecoder returns the decoder registered under name.
func ParseDecoder(name string) (Decoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", DecoderStructured:
		return structuredDecoder{}, nil
	case DecoderRaw, "rawtext", "raw-text":
		return rawDecoder{}, nil
	default:
		return nil, fmt.Errorf("unknown chat decoder %q (use %s or %s)", name, DecoderStructured, DecoderRaw)
	}
}

// DecoderNames lists the accepted decoder names.
func DecoderNames() []string {
	return []string{DecoderStructured, DecoderRaw}
}

// structuredDecoder posts {"prompt": ...} and extracts the final answer from an OpenAI-style envelope.
type structuredDecoder struct{}

func (structuredDecoder) Name() string { return DecoderStructured }

func (structuredDecoder) Encode(prompt string) (io.Reader, string, error) {
	buf, err := json.Marshal(map[string]string{"prompt": prompt})
	if err != nil {
		return nil, "", err
	}
	return bytes.NewReader(buf), "application/json", nil
}

func (structuredDecoder) Decode(body []byte) (string, error) {
	if !json.Valid(body) {
		return "", errors.New("response is not valid JSON")
	}
	return ExtractResponse(body), nil
}

// rawDecoder posts a multipart "prompts" field and shows the reply verbatim.
type rawDecoder struct{}

func (rawDecoder) Name() string { return DecoderRaw }

func (rawDecoder) Encode(prompt string) (io.Reader, string, error) {
	prompts, err := json.Marshal([]model.ChatTurn{{Role: model.RoleUser, Content: prompt}})
	if err != nil {
		return nil, "", err
	}
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("prompts", string(prompts)); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func (rawDecoder) Decode(body []byte) (string, error) {
	return string(body), nil
}
