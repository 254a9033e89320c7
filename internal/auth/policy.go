package auth

import (
	"github.com/spec-kit/blog-service/internal/domain"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

// Access policy for posts, evaluated as pure functions of
// (identity, post, action). Listing published posts is always allowed and
// needs no verdict. For reads and mutations, absence of the post is checked
// before ownership, so a non-owner cannot distinguish "exists, not yours"
// from "missing" on update/delete.

// CanCreatePost allows any authenticated caller to create a post.
func CanCreatePost(identity *domain.Identity) error {
	if identity == nil {
		return apperrors.NewUnauthorized("no token")
	}
	return nil
}

// CanReadPost decides single-post visibility. Published posts are readable by
// anyone, drafts only by their owner.
func CanReadPost(identity *domain.Identity, post *domain.Post) error {
	if post == nil {
		return apperrors.NewNotFound("post", nil)
	}
	if post.Published {
		return nil
	}
	if identity == nil || identity.ID != post.OwnerID {
		return apperrors.NewForbidden("no access to this draft")
	}
	return nil
}

// CanModifyPost gates update and delete: owner only.
func CanModifyPost(identity *domain.Identity, post *domain.Post) error {
	if post == nil {
		return apperrors.NewNotFound("post", nil)
	}
	if identity == nil {
		return apperrors.NewUnauthorized("no token")
	}
	if identity.ID != post.OwnerID {
		return apperrors.NewForbidden("not the post owner")
	}
	return nil
}
