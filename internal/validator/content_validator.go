package validator

import (
	"context"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/shinobi04/ThinkStore-backend/internal/domain/model"
	"github.com/shinobi04/ThinkStore-backend/internal/usecase"
)

const (
	titleMax = 500
	urlMax   = 2048
	tagsMax  = 10
	tagMax   = 50
)

type contentValidator struct{}

func NewContentValidator() usecase.ContentValidator {
	return &contentValidator{}
}

// 検証しながら in を正規化する
func (v *contentValidator) ValidateAddContent(ctx context.Context, in *usecase.AddContentInput) error {
	if !model.ContentType(in.Type).Valid() {
		return usecase.NewValidationError("Type must be one of document, tweet, youtube, link")
	}

	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return usecase.NewValidationError("Title is required")
	}
	if utf8.RuneCountInString(in.Title) > titleMax {
		return usecase.NewValidationError("Title must not exceed 500 characters")
	}

	in.URL = strings.TrimSpace(in.URL)
	if in.URL != "" {
		if len(in.URL) > urlMax || !isHTTPURL(in.URL) {
			return usecase.NewValidationError("URL must be a valid http(s) URL")
		}
	}

	tags, err := normalizeTags(in.Tags)
	if err != nil {
		return err
	}
	in.Tags = tags
	return nil
}

// trim + 小文字化 + 重複除去（順序は最初の出現順）
func normalizeTags(raw []string) ([]string, error) {
	if len(raw) > tagsMax {
		return nil, usecase.NewValidationError("At most 10 tags are allowed")
	}

	seen := make(map[string]struct{}, len(raw))
	tags := make([]string, 0, len(raw))
	for _, t := range raw {
		name := strings.ToLower(strings.TrimSpace(t))
		if name == "" {
			return nil, usecase.NewValidationError("Tags must not be empty")
		}
		if utf8.RuneCountInString(name) > tagMax {
			return nil, usecase.NewValidationError("Tags must not exceed 50 characters")
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		tags = append(tags, name)
	}
	return tags, nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
