// Package graph はGraphQLスキーマとリゾルバーを提供する。
//
// 各オペレーションはサービス層の本体に入力検証・認可・エラー正規化を合成したもので、
// 合成は起動時にNewResolverで1回だけ行う。
package graph

import (
	"context"

	"github.com/hitoshi/bookreview/internal/auth"
	"github.com/hitoshi/bookreview/internal/metrics"
	"github.com/hitoshi/bookreview/internal/model"
	"github.com/hitoshi/bookreview/internal/token"
	"github.com/hitoshi/bookreview/internal/validate"
)

// 関連リゾルバーのオペレーション名
const (
	opRefreshAccessToken = "refreshAccessToken"
	opGetBooks           = "getBooks"
	opReviews            = "reviews"
	opBook               = "book"
	opUser               = "user"
)

// AuthService はユーザー登録・ログイン・トークン再発行のインターフェース。
type AuthService interface {
	Register(ctx context.Context, in model.RegisterInput) (*model.User, error)
	Login(ctx context.Context, in model.LoginInput) (*model.AuthPayload, error)
	RefreshAccessToken(ctx context.Context) (*model.AuthPayload, error)
}

// BookService は書籍操作のインターフェース。
type BookService interface {
	List(ctx context.Context, in model.NoInput) ([]*model.Book, error)
	Get(ctx context.Context, in model.IDInput) (*model.Book, error)
	Search(ctx context.Context, in model.SearchBooksInput) ([]*model.Book, error)
	Add(ctx context.Context, in model.AddBookInput) (*model.Book, error)
}

// ReviewService はレビュー操作のインターフェース。
type ReviewService interface {
	ListByBook(ctx context.Context, in model.GetReviewsInput) ([]*model.Review, error)
	ListMine(ctx context.Context, in model.PageInput) ([]*model.Review, error)
	Add(ctx context.Context, in model.AddReviewInput) (*model.Review, error)
	Update(ctx context.Context, in model.UpdateReviewInput) (*model.Review, error)
	Delete(ctx context.Context, in model.IDInput) (*model.Review, error)
	OfBook(ctx context.Context, bookID int64) ([]*model.Review, error)
	OfUser(ctx context.Context, userID int64) ([]*model.Review, error)
}

// UserService はユーザー参照のインターフェース。
type UserService interface {
	Get(ctx context.Context, id int64) (*model.User, error)
}

// Deps はResolverの依存関係。
type Deps struct {
	Auth          AuthService
	Books         BookService
	Reviews       ReviewService
	Users         UserService
	Authenticator auth.Identifier
	Validator     *validate.Validator
	Metrics       metrics.MetricsCollector
	// Production が真の場合、エラーにスタックトレースを含めない。
	Production bool
}

// Resolver はGraphQLのルートリゾルバー。
type Resolver struct {
	getBooks     resolverFunc[model.NoInput, []*model.Book]
	getBook      resolverFunc[model.IDInput, *model.Book]
	searchBooks  resolverFunc[model.SearchBooksInput, []*model.Book]
	getReviews   resolverFunc[model.GetReviewsInput, []*model.Review]
	getMyReviews resolverFunc[model.PageInput, []*model.Review]

	register     resolverFunc[model.RegisterInput, *model.User]
	login        resolverFunc[model.LoginInput, *model.AuthPayload]
	refresh      resolverFunc[model.NoInput, *model.AuthPayload]
	addBook      resolverFunc[model.AddBookInput, *model.Book]
	addReview    resolverFunc[model.AddReviewInput, *model.Review]
	updateReview resolverFunc[model.UpdateReviewInput, *model.Review]
	deleteReview resolverFunc[model.IDInput, *model.Review]

	bookReviews resolverFunc[model.IDInput, []*model.Review]
	userReviews resolverFunc[int64, []*model.Review]
	reviewBook  resolverFunc[model.IDInput, *model.Book]
	reviewUser  resolverFunc[int64, *model.User]
}

// NewResolver は全オペレーションを合成したResolverを生成する。
func NewResolver(d Deps) *Resolver {
	p := newPipeline(d.Validator, d.Authenticator, d.Metrics, d.Production)

	refreshBody := func(ctx context.Context, _ model.NoInput) (*model.AuthPayload, error) {
		return d.Auth.RefreshAccessToken(ctx)
	}
	bookReviewsBody := func(ctx context.Context, in model.IDInput) ([]*model.Review, error) {
		return d.Reviews.OfBook(ctx, int64(in.ID))
	}

	return &Resolver{
		getBooks:     normalized(p, opGetBooks, d.Books.List),
		getBook:      public(p, validate.OpGetBook, d.Books.Get),
		searchBooks:  public(p, validate.OpSearchBooks, d.Books.Search),
		getReviews:   public(p, validate.OpGetReviews, d.Reviews.ListByBook),
		getMyReviews: protected(p, validate.OpGetMyReviews, token.KindAccess, d.Reviews.ListMine),

		register:     public(p, validate.OpRegister, d.Auth.Register),
		login:        public(p, validate.OpLogin, d.Auth.Login),
		refresh:      authorized(p, opRefreshAccessToken, token.KindRefresh, refreshBody),
		addBook:      protected(p, validate.OpAddBook, token.KindAccess, d.Books.Add),
		addReview:    protected(p, validate.OpAddReview, token.KindAccess, d.Reviews.Add),
		updateReview: protected(p, validate.OpUpdateReview, token.KindAccess, d.Reviews.Update),
		deleteReview: protected(p, validate.OpDeleteReview, token.KindAccess, d.Reviews.Delete),

		bookReviews: checkedAs(p, opReviews, validate.OpGetBook, bookReviewsBody),
		userReviews: normalized(p, opReviews, d.Reviews.OfUser),
		reviewBook:  checkedAs(p, opBook, validate.OpGetBook, d.Books.Get),
		reviewUser:  normalized(p, opUser, d.Users.Get),
	}
}

// --- Query ---

func (r *Resolver) GetBooks(ctx context.Context) ([]*bookResolver, error) {
	books, err := r.getBooks(ctx, model.NoInput{})
	if err != nil {
		return nil, err
	}
	return r.books(books), nil
}

func (r *Resolver) GetBook(ctx context.Context, args model.IDInput) (*bookResolver, error) {
	b, err := r.getBook(ctx, args)
	if err != nil {
		return nil, err
	}
	return r.book(b), nil
}

func (r *Resolver) SearchBooks(ctx context.Context, args model.SearchBooksInput) ([]*bookResolver, error) {
	books, err := r.searchBooks(ctx, args)
	if err != nil {
		return nil, err
	}
	return r.books(books), nil
}

func (r *Resolver) GetReviews(ctx context.Context, args model.GetReviewsInput) ([]*reviewResolver, error) {
	reviews, err := r.getReviews(ctx, args)
	if err != nil {
		return nil, err
	}
	return r.reviews(reviews), nil
}

func (r *Resolver) GetMyReviews(ctx context.Context, args model.PageInput) ([]*reviewResolver, error) {
	reviews, err := r.getMyReviews(ctx, args)
	if err != nil {
		return nil, err
	}
	return r.reviews(reviews), nil
}

// --- Mutation ---

func (r *Resolver) Register(ctx context.Context, args model.RegisterInput) (*userResolver, error) {
	u, err := r.register(ctx, args)
	if err != nil {
		return nil, err
	}
	return r.user(u), nil
}

func (r *Resolver) Login(ctx context.Context, args model.LoginInput) (*authPayloadResolver, error) {
	payload, err := r.login(ctx, args)
	if err != nil {
		return nil, err
	}
	return &authPayloadResolver{r: r, p: payload}, nil
}

func (r *Resolver) RefreshAccessToken(ctx context.Context) (*authPayloadResolver, error) {
	payload, err := r.refresh(ctx, model.NoInput{})
	if err != nil {
		return nil, err
	}
	return &authPayloadResolver{r: r, p: payload}, nil
}

func (r *Resolver) AddBook(ctx context.Context, args model.AddBookInput) (*bookResolver, error) {
	b, err := r.addBook(ctx, args)
	if err != nil {
		return nil, err
	}
	return r.book(b), nil
}

func (r *Resolver) AddReview(ctx context.Context, args model.AddReviewInput) (*reviewResolver, error) {
	rv, err := r.addReview(ctx, args)
	if err != nil {
		return nil, err
	}
	return r.review(rv), nil
}

func (r *Resolver) UpdateReview(ctx context.Context, args model.UpdateReviewInput) (*reviewResolver, error) {
	rv, err := r.updateReview(ctx, args)
	if err != nil {
		return nil, err
	}
	return r.review(rv), nil
}

func (r *Resolver) DeleteReview(ctx context.Context, args model.IDInput) (*reviewResolver, error) {
	rv, err := r.deleteReview(ctx, args)
	if err != nil {
		return nil, err
	}
	return r.review(rv), nil
}
