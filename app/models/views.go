package models

import (
	"sort"
	"time"
)

// PostView is the outward representation of a post with its top-level comments.
type PostView struct {
	ID         int            `json:"id"`
	Title      string         `json:"title"`
	Body       string         `json:"body"`
	Username   string         `json:"username"`
	CreatedAt  time.Time      `json:"createdAt"`
	ModifiedAt time.Time      `json:"modifiedAt"`
	LikeCount  int            `json:"likeCount"`
	Comments   []*CommentView `json:"comments"`
}

// CommentView is the outward representation of a comment and its replies.
type CommentView struct {
	ID              int            `json:"id"`
	PostID          int            `json:"postId"`
	ParentCommentID *int           `json:"parentCommentId"`
	Body            string         `json:"body"`
	Username        string         `json:"username"`
	CreatedAt       time.Time      `json:"createdAt"`
	ModifiedAt      time.Time      `json:"modifiedAt"`
	LikeCount       int            `json:"likeCount"`
	Children        []*CommentView `json:"children"`
}

// Ack acknowledges a mutation that returns no entity.
type Ack struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// NewPostView copies post into a view. comments may be nil.
func NewPostView(post *Post, likeCount int, comments []*CommentView) *PostView {
	if comments == nil {
		comments = []*CommentView{}
	}
	return &PostView{
		ID:         post.ID,
		Title:      post.Title,
		Body:       post.Body,
		Username:   post.Username,
		CreatedAt:  post.CreatedAt,
		ModifiedAt: post.ModifiedAt,
		LikeCount:  likeCount,
		Comments:   comments,
	}
}

// NewCommentView copies comment into a view with no children.
func NewCommentView(comment *Comment, likeCount int) *CommentView {
	return &CommentView{
		ID:              comment.ID,
		PostID:          comment.PostID,
		ParentCommentID: comment.ParentCommentID,
		Body:            comment.Body,
		Username:        comment.Username,
		CreatedAt:       comment.CreatedAt,
		ModifiedAt:      comment.ModifiedAt,
		LikeCount:       likeCount,
		Children:        []*CommentView{},
	}
}

// SortPostsByModifiedDesc orders posts newest-modified first; ties go to the higher id.
func SortPostsByModifiedDesc(posts []*Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return newer(posts[i].ModifiedAt, posts[i].ID, posts[j].ModifiedAt, posts[j].ID)
	})
}

// SortCommentsByModifiedDesc orders comments newest-modified first; ties go to the higher id.
func SortCommentsByModifiedDesc(comments []*Comment) {
	sort.SliceStable(comments, func(i, j int) bool {
		return newer(comments[i].ModifiedAt, comments[i].ID, comments[j].ModifiedAt, comments[j].ID)
	})
}

func newer(a time.Time, aID int, b time.Time, bID int) bool {
	if a.Equal(b) {
		return aID > bID
	}
	return a.After(b)
}

// Envelope wraps every API response. Data is set on success, Error otherwise;
// Code names domain failures the client can act on.
type Envelope struct {
	Status int         `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
}
