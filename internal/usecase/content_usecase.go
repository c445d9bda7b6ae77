package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/shinobi04/ThinkStore-backend/internal/domain/model"
	"github.com/shinobi04/ThinkStore-backend/internal/repository"
	auth "github.com/shinobi04/ThinkStore-backend/internal/usecase/auth_usecase"
)

// 共有リンクIDの最大長
const maxShareLinkLength = 100

type ContentValidator interface {
	// in を正規化（trim・タグ小文字化・重複除去）しながら検証する
	ValidateAddContent(ctx context.Context, in *AddContentInput) error
}

type AddContentInput struct {
	Type  string
	Title string
	URL   string
	Tags  []string
}

// DELETE のレスポンス
type DeletedContent struct {
	Type  model.ContentType `json:"type"`
	Link  *string           `json:"link"`
	Title string            `json:"title"`
}

// 共有リンク作成のレスポンス
type ShareLinkOutput struct {
	ID    int64             `json:"id"`
	Link  *string           `json:"link"`
	Type  model.ContentType `json:"type"`
	Title string            `json:"title"`
}

type ShareOwner struct {
	Username string `json:"username"`
}

// 公開ページ用。所有者IDなどは出さない。
type SharedContent struct {
	User      ShareOwner        `json:"user"`
	Type      model.ContentType `json:"type"`
	Title     string            `json:"title"`
	URL       string            `json:"url"`
	Tags      []model.Tag       `json:"tags"`
	CreatedAt time.Time         `json:"createdAt"`
}

type ContentUsecase struct {
	contents  repository.ContentRepository
	validator ContentValidator
	linkGen   auth.IDGenerator
}

// DI
func NewContentUsecase(
	contents repository.ContentRepository,
	validator ContentValidator,
	linkGen auth.IDGenerator,
) *ContentUsecase {
	return &ContentUsecase{
		contents:  contents,
		validator: validator,
		linkGen:   linkGen,
	}
}

func (u *ContentUsecase) Add(ctx context.Context, userID int64, in AddContentInput) (*model.Content, error) {
	if err := u.validator.ValidateAddContent(ctx, &in); err != nil {
		return nil, err
	}

	c := &model.Content{
		Type:   model.ContentType(in.Type),
		Title:  in.Title,
		URL:    in.URL,
		UserID: userID,
	}
	if err := u.contents.Create(ctx, c, in.Tags); err != nil {
		return nil, err
	}
	return c, nil
}

func (u *ContentUsecase) List(ctx context.Context, userID int64) ([]model.Content, error) {
	return u.contents.ListByUserID(ctx, userID)
}

func (u *ContentUsecase) Delete(ctx context.Context, userID int64, contentID int64) (*DeletedContent, error) {
	if contentID <= 0 {
		return nil, NewValidationError("Content ID must be a positive integer")
	}

	c, err := u.ownedContent(ctx, userID, contentID)
	if err != nil {
		return nil, err
	}

	if err := u.contents.DeleteByIDAndUserID(ctx, c.ID, userID); err != nil {
		// 取得後に消された
		if errors.Is(err, repository.ErrContentNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, "Content not found")
		}
		return nil, err
	}

	return &DeletedContent{Type: c.Type, Link: c.Link, Title: c.Title}, nil
}

// 共有リンクを作る。すでにあればそれを返す（created=false）。
func (u *ContentUsecase) CreateShareLink(ctx context.Context, userID int64, contentID int64) (*ShareLinkOutput, bool, error) {
	if contentID <= 0 {
		return nil, false, NewValidationError("Invalid content ID")
	}

	c, err := u.ownedContent(ctx, userID, contentID)
	if err != nil {
		return nil, false, err
	}
	if c.Link != nil {
		return toShareLinkOutput(c), false, nil
	}

	link := u.linkGen.NewID()
	err = u.contents.SetShareLink(ctx, c.ID, link)
	switch {
	case err == nil:
		c.Link = &link
		return toShareLinkOutput(c), true, nil
	case errors.Is(err, repository.ErrShareLinkExists):
		// 同時リクエストに負けた → 付いた方を返す
		current, ferr := u.contents.FindByID(ctx, c.ID)
		if ferr != nil {
			return nil, false, ferr
		}
		return toShareLinkOutput(current), false, nil
	case errors.Is(err, repository.ErrContentNotFound):
		return nil, false, NewHTTPError(http.StatusNotFound, "Content not found")
	default:
		return nil, false, err
	}
}

// 共有をやめる
func (u *ContentUsecase) RevokeShareLink(ctx context.Context, userID int64, contentID int64) error {
	if contentID <= 0 {
		return NewValidationError("Invalid content ID")
	}

	c, err := u.ownedContent(ctx, userID, contentID)
	if err != nil {
		return err
	}
	if c.Link == nil {
		return nil
	}

	if err := u.contents.ClearShareLink(ctx, c.ID); err != nil {
		if errors.Is(err, repository.ErrContentNotFound) {
			return NewHTTPError(http.StatusNotFound, "Content not found")
		}
		return err
	}
	return nil
}

// 公開リンクから取得（認証なし）
func (u *ContentUsecase) GetShared(ctx context.Context, link string) (*SharedContent, error) {
	if link == "" || len(link) > maxShareLinkLength {
		return nil, NewValidationError("Invalid link")
	}

	c, err := u.contents.FindByShareLink(ctx, link)
	if err != nil {
		if errors.Is(err, repository.ErrContentNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, "Link not found")
		}
		return nil, err
	}

	tags := c.Tags
	if tags == nil {
		tags = []model.Tag{}
	}

	return &SharedContent{
		User:      ShareOwner{Username: c.User.Username},
		Type:      c.Type,
		Title:     c.Title,
		URL:       c.URL,
		Tags:      tags,
		CreatedAt: c.CreatedAt,
	}, nil
}

// 存在しない→404、他人のもの→403
func (u *ContentUsecase) ownedContent(ctx context.Context, userID int64, contentID int64) (*model.Content, error) {
	c, err := u.contents.FindByID(ctx, contentID)
	if err != nil {
		if errors.Is(err, repository.ErrContentNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, "Content not found")
		}
		return nil, err
	}
	if c.UserID != userID {
		return nil, NewHTTPError(http.StatusForbidden, "Access denied")
	}
	return c, nil
}

func toShareLinkOutput(c *model.Content) *ShareLinkOutput {
	return &ShareLinkOutput{
		ID:    c.ID,
		Link:  c.Link,
		Type:  c.Type,
		Title: c.Title,
	}
}
