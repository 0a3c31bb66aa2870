package app

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"quizzz-client/internal/domain"
	"quizzz-client/internal/submit"
)

// ErrUserUnknown is returned when an operation needs the current user's id
// and none is configured.
var ErrUserUnknown = errors.New("current user id is not configured")

// CommunityService lists, creates, joins and leaves communities for one user.
type CommunityService struct {
	backend CommunityBackend
	userID  int64
	log     logrus.FieldLogger
	form    *submit.Coordinator[domain.Membership]
}

func NewCommunityService(backend CommunityBackend, userID int64, log logrus.FieldLogger, timeout time.Duration) *CommunityService {
	return &CommunityService{
		backend: backend,
		userID:  userID,
		log:     log,
		form:    submit.New[domain.Membership](submit.WithTimeout(timeout)),
	}
}

// FormState reports the outcome of the last create or join.
func (s *CommunityService) FormState() submit.Snapshot[domain.Membership] {
	return s.form.Snapshot()
}

// List returns the user's memberships, admin ones first, then by name.
func (s *CommunityService) List(ctx context.Context) ([]domain.Membership, error) {
	if s.userID <= 0 {
		return nil, ErrUserUnknown
	}
	memberships, err := s.backend.UserCommunities(ctx, s.userID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(memberships, func(i, j int) bool {
		if memberships[i].IsAdmin != memberships[j].IsAdmin {
			return memberships[i].IsAdmin
		}
		return strings.ToLower(memberships[i].Community.Name) < strings.ToLower(memberships[j].Community.Name)
	})
	return memberships, nil
}

// Create makes a new community with the user as its admin.
func (s *CommunityService) Create(ctx context.Context, in domain.CommunityCreate) (domain.Membership, error) {
	return s.submit(ctx, in, func(ctx context.Context) (domain.Membership, error) {
		return s.backend.CreateCommunity(ctx, in)
	})
}

// Join becomes a member of the community with the given name. Wrong
// credentials come back as non-field errors in FormState.
func (s *CommunityService) Join(ctx context.Context, in domain.JoinCommunity) (domain.Membership, error) {
	return s.submit(ctx, in, func(ctx context.Context) (domain.Membership, error) {
		return s.backend.JoinCommunity(ctx, in)
	})
}

// Leave drops the user's membership.
func (s *CommunityService) Leave(ctx context.Context, communityID int64) error {
	if s.userID <= 0 {
		return ErrUserUnknown
	}
	return s.backend.LeaveCommunity(ctx, communityID, s.userID)
}

func (s *CommunityService) submit(ctx context.Context, in any, op submit.Operation[domain.Membership]) (domain.Membership, error) {
	invalid := checkInput(in)
	var out domain.Membership
	err := s.form.Submit(ctx, func(ctx context.Context) (domain.Membership, error) {
		if invalid != nil {
			return domain.Membership{}, invalid
		}
		return op(ctx)
	}, func(m domain.Membership) {
		out = m
	})
	if err != nil {
		s.log.WithError(err).Warn("community submit failed")
		return domain.Membership{}, err
	}
	return out, nil
}
