package graph

import (
	"context"
	"strconv"
	"time"

	graphql "github.com/graph-gophers/graphql-go"

	"github.com/hitoshi/bookreview/internal/model"
)

func (r *Resolver) book(b *model.Book) *bookResolver {
	return &bookResolver{r: r, b: b}
}

func (r *Resolver) books(bs []*model.Book) []*bookResolver {
	out := make([]*bookResolver, len(bs))
	for i, b := range bs {
		out[i] = r.book(b)
	}
	return out
}

func (r *Resolver) review(rv *model.Review) *reviewResolver {
	return &reviewResolver{r: r, rv: rv}
}

func (r *Resolver) reviews(rvs []*model.Review) []*reviewResolver {
	out := make([]*reviewResolver, len(rvs))
	for i, rv := range rvs {
		out[i] = r.review(rv)
	}
	return out
}

func (r *Resolver) user(u *model.User) *userResolver {
	return &userResolver{r: r, u: u}
}

// bookResolver はBook型のリゾルバー。
type bookResolver struct {
	r *Resolver
	b *model.Book
}

func (b *bookResolver) ID() int32            { return int32(b.b.ID) }
func (b *bookResolver) Title() string        { return b.b.Title }
func (b *bookResolver) Author() string       { return b.b.Author }
func (b *bookResolver) PublishedYear() int32 { return int32(b.b.PublishedYear) }

func (b *bookResolver) Reviews(ctx context.Context) ([]*reviewResolver, error) {
	reviews, err := b.r.bookReviews(ctx, model.IDInput{ID: int32(b.b.ID)})
	if err != nil {
		return nil, err
	}
	return b.r.reviews(reviews), nil
}

// reviewResolver はReview型のリゾルバー。
type reviewResolver struct {
	r  *Resolver
	rv *model.Review
}

func (v *reviewResolver) ID() graphql.ID    { return graphql.ID(strconv.FormatInt(v.rv.ID, 10)) }
func (v *reviewResolver) Rating() int32     { return int32(v.rv.Rating) }
func (v *reviewResolver) Comment() string   { return v.rv.Comment }
func (v *reviewResolver) CreatedAt() string { return v.rv.CreatedAt.UTC().Format(time.RFC3339) }
func (v *reviewResolver) UpdatedAt() string { return v.rv.UpdatedAt.UTC().Format(time.RFC3339) }

func (v *reviewResolver) Book(ctx context.Context) (*bookResolver, error) {
	b, err := v.r.reviewBook(ctx, model.IDInput{ID: int32(v.rv.BookID)})
	if err != nil {
		return nil, err
	}
	return v.r.book(b), nil
}

func (v *reviewResolver) User(ctx context.Context) (*userResolver, error) {
	u, err := v.r.reviewUser(ctx, v.rv.UserID)
	if err != nil {
		return nil, err
	}
	return v.r.user(u), nil
}

// userResolver はUser型のリゾルバー。パスワードハッシュは公開しない。
type userResolver struct {
	r *Resolver
	u *model.User
}

func (u *userResolver) ID() int32     { return int32(u.u.ID) }
func (u *userResolver) Name() string  { return u.u.Name }
func (u *userResolver) Email() string { return u.u.Email }

func (u *userResolver) Reviews(ctx context.Context) ([]*reviewResolver, error) {
	reviews, err := u.r.userReviews(ctx, u.u.ID)
	if err != nil {
		return nil, err
	}
	return u.r.reviews(reviews), nil
}

// authPayloadResolver はAuthPayload型のリゾルバー。
type authPayloadResolver struct {
	r *Resolver
	p *model.AuthPayload
}

func (a *authPayloadResolver) AccessToken() *string {
	return optional(a.p.AccessToken)
}

// RefreshToken はトークン再発行の応答では空のためnullになる。
func (a *authPayloadResolver) RefreshToken() *string {
	return optional(a.p.RefreshToken)
}

func (a *authPayloadResolver) User() *userResolver {
	if a.p.User == nil {
		return nil
	}
	return a.r.user(a.p.User)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
