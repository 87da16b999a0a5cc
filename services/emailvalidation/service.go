package emailvalidation

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tech-arch1tect/mailcheck/services/logging"
	"go.uber.org/zap"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrDeliveryFailed  = errors.New("notification delivery failed")
)

// Service manages the lifecycle of email validation tokens. It keeps no token
// state of its own.
//
// IssueToken calls for the same owner are serialised within the process. The
// notification goes out before any write, and superseding the previous tokens
// and inserting the new one happen together in one short store transaction,
// so a failed delivery changes nothing. Issuers in other processes sharing the
// database are not coordinated.
type Service struct {
	store        TokenStore
	users        UserLookup
	sender       NotificationSender
	logger       *logging.Service
	locks        *ownerLocks
	now          func() time.Time
	linkTemplate string
}

func NewService(store TokenStore, users UserLookup, sender NotificationSender, logger *logging.Service) *Service {
	return &Service{
		store:  store,
		users:  users,
		sender: sender,
		logger: logger,
		locks:  newOwnerLocks(),
		now:    time.Now,
	}
}

// SetDefaultLinkTemplate sets the template used by RequestValidation.
func (s *Service) SetDefaultLinkTemplate(template string) {
	s.linkTemplate = template
}

// IssueToken sends a validation link for a new token, then supersedes the
// owner's active tokens and persists the new one. The link is rendered from
// linkTemplate with the new token's id in place of {0}; the id is fixed before
// sending so the link does not depend on when the token is stored.
func (s *Service) IssueToken(ownerID uuid.UUID, linkTemplate string) (*Token, error) {
	s.logger.Info("issuing email validation token", zap.String("owner_id", ownerID.String()))

	if ownerID == uuid.Nil {
		return nil, fmt.Errorf("%w: owner id is required", ErrInvalidArgument)
	}

	user, err := s.users.FindUser(ownerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.Warn("email validation requested for unknown user", zap.String("owner_id", ownerID.String()))
		} else {
			s.logger.Error("failed to look up user", zap.Error(err), zap.String("owner_id", ownerID.String()))
		}
		return nil, err
	}

	if err := ValidateLinkTemplate(linkTemplate); err != nil {
		s.logger.Warn("rejected email validation link template", zap.Error(err))
		return nil, err
	}

	unlock := s.locks.lock(ownerID)
	defer unlock()

	token := NewToken(ownerID, s.now())

	link, err := RenderLink(linkTemplate, token.ID)
	if err != nil {
		return nil, err
	}

	if err := s.sender.Send(map[string]any{
		DataUser:    user,
		DataLinkURL: link,
	}); err != nil {
		s.logger.Error("failed to send email validation notification", zap.Error(err), zap.String("owner_id", ownerID.String()))
		return nil, err
	}

	err = s.store.Transaction(func(store TokenStore) error {
		active, err := store.FindActiveByOwner(ownerID)
		if err != nil {
			return err
		}

		now := s.now()
		for i := range active {
			active[i].supersede(now)
			if err := store.Update(&active[i]); err != nil {
				return err
			}
		}

		if len(active) > 0 {
			s.logger.Debug("superseded previous email validation tokens",
				zap.String("owner_id", ownerID.String()),
				zap.Int("tokens_superseded", len(active)))
		}

		return store.Insert(token)
	})
	if err != nil {
		s.logger.Error("email validation link sent but token was not stored",
			zap.Error(err),
			zap.String("owner_id", ownerID.String()),
			zap.String("token_id", token.ID.String()))
		return nil, err
	}

	s.logger.Info("email validation token issued",
		zap.String("owner_id", ownerID.String()),
		zap.String("token_id", token.ID.String()))
	return token, nil
}

func (s *Service) IssueTokenForUser(user *User, linkTemplate string) (*Token, error) {
	if user == nil {
		return nil, fmt.Errorf("%w: user is required", ErrInvalidArgument)
	}
	return s.IssueToken(user.ID, linkTemplate)
}

// RequestValidation issues a token using the default link template.
func (s *Service) RequestValidation(ownerID uuid.UUID) (*Token, error) {
	if s.linkTemplate == "" {
		return nil, fmt.Errorf("%w: no default link template configured", ErrInvalidArgument)
	}
	return s.IssueToken(ownerID, s.linkTemplate)
}

// RedeemToken marks the token as validated and reports whether it exists.
// Superseded tokens can still be redeemed.
func (s *Service) RedeemToken(tokenID uuid.UUID) (bool, error) {
	token, err := s.store.FindByID(tokenID)
	if err != nil {
		s.logger.Error("failed to load email validation token", zap.Error(err))
		return false, err
	}

	if token == nil {
		s.logger.Warn("unknown email validation token redeemed", zap.String("token_id", tokenID.String()))
		return false, nil
	}

	if token.markValidated(s.now()) {
		if err := s.store.Update(token); err != nil {
			s.logger.Error("failed to mark email validation token as validated", zap.Error(err))
			return false, err
		}
		s.logger.Info("email validation token redeemed",
			zap.String("token_id", tokenID.String()),
			zap.String("owner_id", token.OwnerID.String()),
			zap.Bool("superseded", token.IsSuperseded()))
	}

	return true, nil
}

// IsExpired reports whether the token is missing or superseded. Age and
// validation state are not considered.
func (s *Service) IsExpired(tokenID uuid.UUID) (bool, error) {
	token, err := s.store.FindByID(tokenID)
	if err != nil {
		return false, err
	}
	return token == nil || token.IsSuperseded(), nil
}

// IsValidated reports whether any of the owner's tokens, superseded or not,
// has been redeemed.
func (s *Service) IsValidated(ownerID uuid.UUID) (bool, error) {
	return s.store.ExistsValidatedForOwner(ownerID)
}

func (s *Service) IsUserValidated(user *User) (bool, error) {
	if user == nil {
		return false, fmt.Errorf("%w: user is required", ErrInvalidArgument)
	}
	return s.IsValidated(user.ID)
}

type ownerLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*ownerLock
}

type ownerLock struct {
	mu   sync.Mutex
	refs int
}

func newOwnerLocks() *ownerLocks {
	return &ownerLocks{locks: make(map[uuid.UUID]*ownerLock)}
}

// lock blocks until the owner's lock is held and returns its release func.
// Entries are dropped once no caller holds or waits on them.
func (l *ownerLocks) lock(ownerID uuid.UUID) func() {
	l.mu.Lock()
	entry, ok := l.locks[ownerID]
	if !ok {
		entry = &ownerLock{}
		l.locks[ownerID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, ownerID)
		}
		l.mu.Unlock()
	}
}
