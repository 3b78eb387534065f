package service

import (
	"context"
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mentora-api/internal/dto"
	"github.com/noah-isme/mentora-api/internal/listview"
	"github.com/noah-isme/mentora-api/internal/models"
	"github.com/noah-isme/mentora-api/internal/repository"
)

// ErrRejectNotOpen indicates a reject dialog operation without an open dialog.
var ErrRejectNotOpen = errors.New("no rejection in progress")

const maxReviewPageSize = 100

// ReviewService hosts a list view controller per reviewer and queue.
type ReviewService interface {
	View(ctx context.Context, actor ActivityActor, kind models.ReviewKind) (dto.ReviewListResponse, error)
	UpdateSession(ctx context.Context, actor ActivityActor, kind models.ReviewKind, update dto.ReviewSessionUpdate) (dto.ReviewListResponse, error)
	ResetSession(ctx context.Context, actor ActivityActor, kind models.ReviewKind) (dto.ReviewListResponse, error)
	Detail(ctx context.Context, kind models.ReviewKind, id uint) (dto.ReviewDetailResponse, error)
	Approve(ctx context.Context, actor ActivityActor, kind models.ReviewKind, id uint) (dto.ReviewListResponse, error)
	OpenReject(ctx context.Context, actor ActivityActor, kind models.ReviewKind, id uint) (dto.ReviewListResponse, error)
	UpdateRejectReason(ctx context.Context, actor ActivityActor, kind models.ReviewKind, req dto.RejectReasonRequest) (dto.ReviewListResponse, error)
	ConfirmReject(ctx context.Context, actor ActivityActor, kind models.ReviewKind, req dto.RejectReasonRequest) (dto.ReviewListResponse, error)
	CancelReject(ctx context.Context, actor ActivityActor, kind models.ReviewKind) (dto.ReviewListResponse, error)
}

type reviewService struct {
	catalog    ReviewCatalog
	decisions  repository.ReviewDecisionRepository
	dispatcher ReviewDispatcher
	sessions   ReviewSessionStore
	validator  *validator.Validate
	sanitizer  *bluemonday.Policy
	pageSize   int
	logger     zerolog.Logger
}

// NewReviewService constructs the review service.
func NewReviewService(
	catalog ReviewCatalog,
	decisions repository.ReviewDecisionRepository,
	dispatcher ReviewDispatcher,
	sessions ReviewSessionStore,
	validate *validator.Validate,
	pageSize int,
	logger zerolog.Logger,
) ReviewService {
	if pageSize <= 0 {
		pageSize = listview.DefaultPageSize
	}
	if pageSize > maxReviewPageSize {
		pageSize = maxReviewPageSize
	}
	if validate == nil {
		validate = validator.New()
	}
	if sessions == nil {
		sessions = NewReviewSessionStore(nil, 0)
	}

	return &reviewService{
		catalog:    catalog,
		decisions:  decisions,
		dispatcher: dispatcher,
		sessions:   sessions,
		validator:  validate,
		sanitizer:  bluemonday.StrictPolicy(),
		pageSize:   pageSize,
		logger:     logger.With().Str("component", "review_service").Logger(),
	}
}

// reviewSession is one request's controller, restored from the stored snapshot.
type reviewSession struct {
	key         string
	kind        models.ReviewKind
	queue       ReviewQueue
	ctrl        *listview.Controller[dto.ReviewItem]
	dispatchErr error
}

func (s *reviewService) open(ctx context.Context, actor ActivityActor, kind models.ReviewKind) (*reviewSession, error) {
	queue, ok := s.catalog.Queue(kind)
	if !ok {
		return nil, ErrUnknownReviewKind
	}

	items, err := queue.List(ctx)
	if err != nil {
		return nil, err
	}

	session := &reviewSession{key: reviewSessionKey(actor, kind), kind: kind, queue: queue}
	session.ctrl = listview.New[dto.ReviewItem](func(action listview.Action) {
		_, session.dispatchErr = s.dispatcher.Dispatch(ctx, actor, kind, action)
	}, listview.WithPageSize(s.pageSize))
	session.ctrl.SetRecords(items)

	state, found, err := s.sessions.Load(ctx, session.key)
	if err != nil {
		s.logger.Warn().Err(err).Str("session", session.key).Msg("failed to load review session, starting fresh")
		return session, nil
	}
	if found {
		if state.PageSize > maxReviewPageSize {
			state.PageSize = maxReviewPageSize
		}
		session.ctrl.Restore(state)
	}

	return session, nil
}

// refresh reloads the queue after a dispatched transition.
func (s *reviewService) refresh(ctx context.Context, session *reviewSession) error {
	items, err := session.queue.List(ctx)
	if err != nil {
		return err
	}
	session.ctrl.SetRecords(items)
	return nil
}

func (s *reviewService) commit(ctx context.Context, session *reviewSession) (dto.ReviewListResponse, error) {
	if err := s.sessions.Save(ctx, session.key, session.ctrl.State()); err != nil {
		return dto.ReviewListResponse{}, err
	}
	return dto.NewReviewListResponse(session.kind, session.ctrl.View()), nil
}

// settleDispatch handles the outcome of an action emitted by the controller. A record that
// vanished or was decided by someone else is treated as a stale list: the view is refreshed and
// saved before the error is returned. Any other failure leaves the stored session untouched.
func (s *reviewService) settleDispatch(ctx context.Context, session *reviewSession) (dto.ReviewListResponse, error) {
	dispatchErr := session.dispatchErr
	if dispatchErr != nil && !errors.Is(dispatchErr, ErrReviewNotPending) && !errors.Is(dispatchErr, ErrReviewNotFound) {
		return dto.ReviewListResponse{}, dispatchErr
	}

	if err := s.refresh(ctx, session); err != nil {
		return dto.ReviewListResponse{}, err
	}
	view, err := s.commit(ctx, session)
	if err != nil {
		return dto.ReviewListResponse{}, err
	}
	if dispatchErr != nil {
		return view, dispatchErr
	}
	return view, nil
}

func (s *reviewService) View(ctx context.Context, actor ActivityActor, kind models.ReviewKind) (dto.ReviewListResponse, error) {
	session, err := s.open(ctx, actor, kind)
	if err != nil {
		return dto.ReviewListResponse{}, err
	}
	return s.commit(ctx, session)
}

func (s *reviewService) UpdateSession(ctx context.Context, actor ActivityActor, kind models.ReviewKind, update dto.ReviewSessionUpdate) (dto.ReviewListResponse, error) {
	if err := s.validator.Struct(update); err != nil {
		return dto.ReviewListResponse{}, err
	}

	session, err := s.open(ctx, actor, kind)
	if err != nil {
		return dto.ReviewListResponse{}, err
	}

	ctrl := session.ctrl
	if update.Search != nil {
		ctrl.SetSearch(*update.Search)
	}
	if update.Status != nil {
		ctrl.SetStatusFilter(*update.Status)
	}
	if update.PageSize != nil {
		ctrl.SetPageSize(*update.PageSize)
	}
	if update.Page != nil {
		ctrl.SetPage(*update.Page)
	}

	return s.commit(ctx, session)
}

func (s *reviewService) ResetSession(ctx context.Context, actor ActivityActor, kind models.ReviewKind) (dto.ReviewListResponse, error) {
	if _, ok := s.catalog.Queue(kind); !ok {
		return dto.ReviewListResponse{}, ErrUnknownReviewKind
	}
	if err := s.sessions.Delete(ctx, reviewSessionKey(actor, kind)); err != nil {
		return dto.ReviewListResponse{}, err
	}

	session, err := s.open(ctx, actor, kind)
	if err != nil {
		return dto.ReviewListResponse{}, err
	}
	return dto.NewReviewListResponse(kind, session.ctrl.View()), nil
}

func (s *reviewService) Detail(ctx context.Context, kind models.ReviewKind, id uint) (dto.ReviewDetailResponse, error) {
	queue, ok := s.catalog.Queue(kind)
	if !ok {
		return dto.ReviewDetailResponse{}, ErrUnknownReviewKind
	}

	item, err := queue.Get(ctx, id)
	if err != nil {
		return dto.ReviewDetailResponse{}, err
	}

	history := []dto.ReviewDecisionResponse{}
	if s.decisions != nil {
		decisions, err := s.decisions.ListForRecord(ctx, kind, id)
		if err != nil {
			return dto.ReviewDetailResponse{}, err
		}
		history = dto.NewReviewDecisionResponses(decisions)
	}

	return dto.ReviewDetailResponse{Item: item, History: history}, nil
}

func (s *reviewService) Approve(ctx context.Context, actor ActivityActor, kind models.ReviewKind, id uint) (dto.ReviewListResponse, error) {
	session, err := s.open(ctx, actor, kind)
	if err != nil {
		return dto.ReviewListResponse{}, err
	}

	recordID := strconv.FormatUint(uint64(id), 10)
	if err := checkActionable(session.ctrl, recordID); err != nil {
		return dto.ReviewListResponse{}, err
	}

	session.ctrl.RequestApprove(recordID)
	return s.settleDispatch(ctx, session)
}

func (s *reviewService) OpenReject(ctx context.Context, actor ActivityActor, kind models.ReviewKind, id uint) (dto.ReviewListResponse, error) {
	session, err := s.open(ctx, actor, kind)
	if err != nil {
		return dto.ReviewListResponse{}, err
	}

	recordID := strconv.FormatUint(uint64(id), 10)
	if err := checkActionable(session.ctrl, recordID); err != nil {
		return dto.ReviewListResponse{}, err
	}

	session.ctrl.RequestReject(recordID)
	return s.commit(ctx, session)
}

func (s *reviewService) UpdateRejectReason(ctx context.Context, actor ActivityActor, kind models.ReviewKind, req dto.RejectReasonRequest) (dto.ReviewListResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ReviewListResponse{}, err
	}

	session, err := s.open(ctx, actor, kind)
	if err != nil {
		return dto.ReviewListResponse{}, err
	}
	if !session.ctrl.Modal().Open {
		return dto.ReviewListResponse{}, ErrRejectNotOpen
	}

	reason := ""
	if req.Reason != nil {
		reason = *req.Reason
	}
	session.ctrl.SetReason(reason)
	return s.commit(ctx, session)
}

// ConfirmReject submits the open rejection. req.Reason overrides the stored reason buffer when set.
func (s *reviewService) ConfirmReject(ctx context.Context, actor ActivityActor, kind models.ReviewKind, req dto.RejectReasonRequest) (dto.ReviewListResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ReviewListResponse{}, err
	}

	session, err := s.open(ctx, actor, kind)
	if err != nil {
		return dto.ReviewListResponse{}, err
	}

	modal := session.ctrl.Modal()
	if !modal.Open {
		return dto.ReviewListResponse{}, ErrRejectNotOpen
	}

	if err := checkActionable(session.ctrl, modal.RecordID); err != nil {
		session.ctrl.CancelReject()
		view, commitErr := s.commit(ctx, session)
		if commitErr != nil {
			return dto.ReviewListResponse{}, commitErr
		}
		return view, err
	}

	reason := modal.Reason
	if req.Reason != nil {
		reason = *req.Reason
	}

	// A reason that is blank once markup is stripped stays in the buffer and the dialog stays open.
	if plainText(s.sanitizer, reason) == "" || !session.ctrl.ConfirmReject(modal.RecordID, reason) {
		session.ctrl.SetReason(reason)
		view, err := s.commit(ctx, session)
		if err != nil {
			return dto.ReviewListResponse{}, err
		}
		return view, ErrRejectReasonRequired
	}

	return s.settleDispatch(ctx, session)
}

func (s *reviewService) CancelReject(ctx context.Context, actor ActivityActor, kind models.ReviewKind) (dto.ReviewListResponse, error) {
	session, err := s.open(ctx, actor, kind)
	if err != nil {
		return dto.ReviewListResponse{}, err
	}

	session.ctrl.CancelReject()
	return s.commit(ctx, session)
}

func checkActionable(ctrl *listview.Controller[dto.ReviewItem], recordID string) error {
	record, ok := ctrl.Find(recordID)
	if !ok {
		return ErrReviewNotFound
	}
	if !listview.IsActionable(record) {
		return ErrReviewNotPending
	}
	return nil
}
