// Package demo registers a small user/post model and runs the bootstrap
// scenario used by the equal CLI.
package demo

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/equal-orm/equal/internal/orm/repository"
	"github.com/equal-orm/equal/internal/orm/schema"
)

// User owns many posts
type User struct {
	ID    string
	Name  string
	Posts []*Post
}

// Post belongs to a user through UserID
type Post struct {
	ID     string
	Title  string
	UserID string
}

// UserRepository serves User
type UserRepository struct{}

// PostRepository serves Post
type PostRepository struct{}

// Register adds the demo entities and repositories to reg
func Register(reg *schema.Registry) error {
	if err := schema.Define[Post](reg, "").Columns(
		schema.Scalar("id", schema.TypeUUID, func(p *Post) *string { return &p.ID }, schema.Primary()),
		schema.Scalar("title", schema.TypeString, func(p *Post) *string { return &p.Title }),
		schema.Scalar("userId", schema.TypeUUID, func(p *Post) *string { return &p.UserID }),
	).Err(); err != nil {
		return err
	}

	if err := schema.Define[User](reg, "").Columns(
		schema.Scalar("id", schema.TypeUUID, func(u *User) *string { return &u.ID }, schema.Primary()),
		schema.Scalar("name", schema.TypeString, func(u *User) *string { return &u.Name }),
		schema.HasMany("posts", func(u *User) *[]*Post { return &u.Posts }),
	).Err(); err != nil {
		return err
	}

	if err := schema.BindRepository[UserRepository, User](reg); err != nil {
		return err
	}
	return schema.BindRepository[PostRepository, Post](reg)
}

// Repositories bundles the demo repositories
type Repositories struct {
	Users *repository.Repository[User]
	Posts *repository.Repository[Post]
}

// Open resolves the demo repositories through their bindings
func Open(reg *schema.Registry, store repository.Store, opts ...repository.Option) (*Repositories, error) {
	users, err := repository.For[UserRepository, User](reg, store, opts...)
	if err != nil {
		return nil, err
	}
	posts, err := repository.For[PostRepository, Post](reg, store, opts...)
	if err != nil {
		return nil, err
	}
	return &Repositories{Users: users, Posts: posts}, nil
}

// EnsureSchema creates the demo tables, dropping them first when reset is set
func (r *Repositories) EnsureSchema(ctx context.Context, reset bool) error {
	if err := r.Posts.EnsureSchema(ctx, reset); err != nil {
		return fmt.Errorf("posts table: %w", err)
	}
	if err := r.Users.EnsureSchema(ctx, reset); err != nil {
		return fmt.Errorf("users table: %w", err)
	}
	return nil
}

// Run resets the tables, saves a user with two posts and loads every user
// together with its posts.
func (r *Repositories) Run(ctx context.Context, logger *zap.Logger) ([]*User, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := r.EnsureSchema(ctx, true); err != nil {
		return nil, err
	}

	user := &User{Name: "equal"}
	if err := r.Users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	logger.Info("saved user", zap.String("id", user.ID))

	for _, title := range []string{"Teste 1", "Teste 2"} {
		post := &Post{Title: title, UserID: user.ID}
		if err := r.Posts.Save(ctx, post); err != nil {
			return nil, fmt.Errorf("save post: %w", err)
		}
		logger.Info("saved post", zap.String("id", post.ID), zap.String("title", post.Title))
	}

	return r.Users.Find(ctx, repository.FindOptions{Relations: []string{"posts"}})
}
