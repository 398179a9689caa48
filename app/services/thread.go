package services

import (
	"bulletin/app/models"
	"bulletin/app/repositories"

	"github.com/pkg/errors"
)

// thread is the comment tree of one post, indexed by parent id. Top-level
// comments sit under parent 0.
type thread struct {
	children map[int][]*models.Comment
	likes    map[int]int
}

func loadThread(tx repositories.Tx, postID int) (*thread, error) {
	comments, err := tx.Comments().ListByPost(postID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list comments of post %d", postID)
	}

	t := &thread{
		children: make(map[int][]*models.Comment),
		likes:    make(map[int]int, len(comments)),
	}
	for _, comment := range comments {
		parent := 0
		if !comment.IsTopLevel() {
			parent = *comment.ParentCommentID
		}
		t.children[parent] = append(t.children[parent], comment)

		count, err := tx.Likes().CountByTarget(models.CommentTarget(comment.ID))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to count likes of comment %d", comment.ID)
		}
		t.likes[comment.ID] = count
	}
	for _, siblings := range t.children {
		models.SortCommentsByModifiedDesc(siblings)
	}
	return t, nil
}

// views returns the replies to parent, each carrying its own subtree.
func (t *thread) views(parent int) []*models.CommentView {
	siblings := t.children[parent]
	views := make([]*models.CommentView, 0, len(siblings))
	for _, comment := range siblings {
		view := models.NewCommentView(comment, t.likes[comment.ID])
		view.Children = t.views(comment.ID)
		views = append(views, view)
	}
	return views
}

func (t *thread) view(comment *models.Comment) *models.CommentView {
	view := models.NewCommentView(comment, t.likes[comment.ID])
	view.Children = t.views(comment.ID)
	return view
}

func postView(tx repositories.Tx, post *models.Post) (*models.PostView, error) {
	count, err := tx.Likes().CountByTarget(models.PostTarget(post.ID))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to count likes of post %d", post.ID)
	}
	t, err := loadThread(tx, post.ID)
	if err != nil {
		return nil, err
	}
	return models.NewPostView(post, count, t.views(0)), nil
}

func commentView(tx repositories.Tx, comment *models.Comment) (*models.CommentView, error) {
	t, err := loadThread(tx, comment.PostID)
	if err != nil {
		return nil, err
	}
	return t.view(comment), nil
}

// subtree returns root and every reply below it, parents before children.
func subtree(tx repositories.Tx, root int) ([]int, error) {
	ids := []int{root}
	for i := 0; i < len(ids); i++ {
		children, err := tx.Comments().ListChildren(ids[i])
		if err != nil {
			return nil, errors.Wrapf(err, "failed to list replies to comment %d", ids[i])
		}
		for _, child := range children {
			ids = append(ids, child.ID)
		}
	}
	return ids, nil
}

// purgeComment deletes a comment, its replies and every like on them.
func purgeComment(tx repositories.Tx, id int) error {
	ids, err := subtree(tx, id)
	if err != nil {
		return err
	}
	for i := len(ids) - 1; i >= 0; i-- {
		if err := tx.Likes().DeleteAllByTarget(models.CommentTarget(ids[i])); err != nil {
			return errors.Wrapf(err, "failed to delete likes of comment %d", ids[i])
		}
		if err := tx.Comments().Delete(ids[i]); err != nil {
			return errors.Wrapf(err, "failed to delete comment %d", ids[i])
		}
	}
	return nil
}

// purgePost deletes a post, all of its comments and every like on either.
func purgePost(tx repositories.Tx, id int) error {
	comments, err := tx.Comments().ListByPost(id)
	if err != nil {
		return errors.Wrapf(err, "failed to list comments of post %d", id)
	}
	for _, comment := range comments {
		if err := tx.Likes().DeleteAllByTarget(models.CommentTarget(comment.ID)); err != nil {
			return errors.Wrapf(err, "failed to delete likes of comment %d", comment.ID)
		}
		if err := tx.Comments().Delete(comment.ID); err != nil {
			return errors.Wrapf(err, "failed to delete comment %d", comment.ID)
		}
	}
	if err := tx.Likes().DeleteAllByTarget(models.PostTarget(id)); err != nil {
		return errors.Wrapf(err, "failed to delete likes of post %d", id)
	}
	return errors.Wrapf(tx.Posts().Delete(id), "failed to delete post %d", id)
}
