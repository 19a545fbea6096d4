package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"biosecure-pay/internal/core/domain"
	"biosecure-pay/internal/core/ports"
	"biosecure-pay/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// TransactionServiceImpl implements ports.TransactionService. It is the only
// writer of transaction state and moves a transaction
// initiated -> authenticated -> executed through compare-and-swap updates.
type TransactionServiceImpl struct {
	txRepo    ports.TransactionRepository
	accounts  ports.AccountService
	templates ports.BiometricService
	gateway   ports.PaymentGateway
	matcher   ports.TemplateMatcher
	policy    domain.AuthorizationPolicy
	currency  string

	// optional collaborators
	users          ports.UserRepository
	idempCache     ports.IdempotencyCache
	idempTTL       time.Duration
	limiter        ports.AttemptLimiter
	maxAttempts    int
	attemptsWindow time.Duration

	now func() time.Time
	log zerolog.Logger
}

// TransactionOption configures optional behaviour of the transaction service.
type TransactionOption func(*TransactionServiceImpl)

// WithKYCGate makes initiation require a verified user.
func WithKYCGate(users ports.UserRepository) TransactionOption {
	return func(s *TransactionServiceImpl) { s.users = users }
}

// WithIdempotencyCache lets clients retry initiation under an idempotency key.
func WithIdempotencyCache(cache ports.IdempotencyCache, ttl time.Duration) TransactionOption {
	return func(s *TransactionServiceImpl) {
		s.idempCache = cache
		s.idempTTL = ttl
	}
}

// WithAttemptLimiter caps authentication attempts per transaction.
func WithAttemptLimiter(limiter ports.AttemptLimiter, maxAttempts int, window time.Duration) TransactionOption {
	return func(s *TransactionServiceImpl) {
		s.limiter = limiter
		s.maxAttempts = maxAttempts
		s.attemptsWindow = window
	}
}

// WithCurrency overrides the currency used when a request names none.
func WithCurrency(currency string) TransactionOption {
	return func(s *TransactionServiceImpl) {
		if currency != "" {
			s.currency = strings.ToUpper(currency)
		}
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) TransactionOption {
	return func(s *TransactionServiceImpl) { s.now = now }
}

// NewTransactionService creates a new TransactionServiceImpl.
func NewTransactionService(
	txRepo ports.TransactionRepository,
	accounts ports.AccountService,
	templates ports.BiometricService,
	gateway ports.PaymentGateway,
	matcher ports.TemplateMatcher,
	policy domain.AuthorizationPolicy,
	log zerolog.Logger,
	opts ...TransactionOption,
) *TransactionServiceImpl {
	s := &TransactionServiceImpl{
		txRepo:    txRepo,
		accounts:  accounts,
		templates: templates,
		gateway:   gateway,
		matcher:   matcher,
		policy:    policy,
		currency:  domain.DefaultCurrency,
		now:       func() time.Time { return time.Now().UTC() },
		log:       log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initiate validates the target account, obtains a provider reference and
// records a new transaction in state initiated.
func (s *TransactionServiceImpl) Initiate(ctx context.Context, req ports.InitiateRequest) (*domain.Transaction, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	recipient := strings.TrimSpace(req.Recipient)
	if recipient == "" {
		return nil, apperror.Validation("recipient is required")
	}
	if strings.TrimSpace(req.AccountID) == "" {
		return nil, apperror.Validation("account_id is required")
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = s.currency
	}

	idempKey := s.idempotencyKey(req.UserID, req.IdempotencyKey)
	if existing := s.replay(ctx, req.UserID, idempKey); existing != nil {
		return existing, nil
	}

	if s.users != nil {
		user, err := s.users.GetByID(ctx, req.UserID)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("get user: %w", err))
		}
		if user == nil || !user.IsKYCVerified() {
			return nil, apperror.ErrKYCRequired()
		}
	}

	linked, err := s.accounts.IsLinked(ctx, req.UserID, req.AccountID)
	if err != nil {
		return nil, err
	}
	if !linked {
		return nil, apperror.ErrInvalidAccount()
	}

	res, err := s.gateway.Initialize(ctx, ports.GatewayInitRequest{
		Recipient: recipient,
		Amount:    req.Amount,
		Currency:  currency,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", req.UserID.String()).Msg("payment gateway unavailable on initialize")
		return nil, apperror.ErrGatewayUnavailable("payment gateway", err)
	}
	if !res.Success || res.Reference == "" {
		return nil, apperror.ErrGatewayInitializationFailed(res.Message)
	}

	now := s.now()
	txn := &domain.Transaction{
		ID:                   uuid.New(),
		UserID:               req.UserID,
		Amount:               req.Amount,
		Currency:             currency,
		Recipient:            recipient,
		AccountID:            req.AccountID,
		State:                domain.TransactionStateInitiated,
		BiometricFactorsUsed: []domain.FactorType{},
		ProviderReference:    res.Reference,
		History:              []domain.TransactionEvent{{State: domain.TransactionStateInitiated, At: now}},
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.txRepo.Create(ctx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create transaction: %w", err))
	}

	if idempKey != "" {
		if err := s.idempCache.Set(ctx, idempKey, []byte(txn.ID.String()), s.idempTTL); err != nil {
			s.log.Warn().Err(err).Str("key", idempKey).Msg("failed to cache idempotency key in redis")
		}
	}

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("user_id", req.UserID.String()).
		Int64("amount", txn.Amount).
		Str("currency", txn.Currency).
		Msg("transaction initiated")

	return txn, nil
}

// Authenticate checks the presented factors against the enrolled templates
// and moves the transaction to authenticated. Any failure leaves it in
// initiated so the client may retry.
//
// Checks run in a fixed order: transaction ownership and state, then the
// multi-factor policy on the presented count, then proof shape, then
// matching. A high-value transaction with too few factors is always
// MultiFactorRequired, whatever the factors contain.
func (s *TransactionServiceImpl) Authenticate(ctx context.Context, userID, txID uuid.UUID, proofs []domain.FactorProof) (*domain.Transaction, error) {
	if s.limiter != nil {
		key := fmt.Sprintf("%s:%s", userID, txID)
		allowed, err := s.limiter.Allow(ctx, key, s.maxAttempts, s.attemptsWindow)
		if err != nil {
			s.log.Warn().Err(err).Str("tx_id", txID.String()).Msg("attempt limiter unavailable")
		} else if !allowed {
			return nil, apperror.ErrTooManyAttempts()
		}
	}

	txn, err := s.txRepo.GetForUser(ctx, txID, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get transaction: %w", err))
	}
	if txn == nil || txn.State != domain.TransactionStateInitiated {
		return nil, apperror.ErrTransactionNotFound()
	}

	if s.policy.RequiresMoreFactors(txn.Amount, len(proofs)) {
		return nil, apperror.ErrMultiFactorRequired(s.policy.MinHighValueFactors)
	}
	if err := validateProofs(proofs); err != nil {
		return nil, err
	}

	used := make([]domain.FactorType, 0, len(proofs))
	for _, p := range proofs {
		enrolled, ok, err := s.templates.GetTemplate(ctx, userID, p.Type)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperror.ErrFactorNotEnrolled(string(p.Type))
		}
		if !s.matcher.Match(p.Template, enrolled) {
			s.log.Info().Str("tx_id", txID.String()).Str("factor", string(p.Type)).Msg("biometric mismatch")
			return nil, apperror.ErrFactorMismatch(string(p.Type))
		}
		used = append(used, p.Type)
	}

	now := s.now()
	ok, err := s.txRepo.Transition(ctx, txn.ID, userID,
		domain.TransactionStateInitiated, domain.TransactionStateAuthenticated,
		ports.TransitionUpdate{FactorsUsed: used, At: now})
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("transition transaction: %w", err))
	}
	if !ok {
		return nil, apperror.ErrInvalidStateTransition(string(domain.TransactionStateInitiated), string(domain.TransactionStateAuthenticated))
	}
	txn.Apply(domain.TransactionStateAuthenticated, used, now)

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Int("factors", len(used)).
		Msg("transaction authenticated")

	return txn, nil
}

// Execute verifies the payment with the provider and moves the transaction
// to executed. The returned transaction carries the provider reference.
func (s *TransactionServiceImpl) Execute(ctx context.Context, userID, txID uuid.UUID) (*domain.Transaction, error) {
	txn, err := s.txRepo.GetForUser(ctx, txID, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get transaction: %w", err))
	}
	if txn == nil || txn.State != domain.TransactionStateAuthenticated {
		return nil, apperror.ErrNotAuthenticated()
	}

	res, err := s.gateway.Verify(ctx, txn.ProviderReference)
	if err != nil {
		s.log.Warn().Err(err).Str("tx_id", txn.ID.String()).Msg("payment gateway unavailable on verify")
		return nil, apperror.ErrGatewayUnavailable("payment gateway", err)
	}
	if !res.Success {
		detail := res.Message
		if detail == "" {
			detail = res.Status
		}
		return nil, apperror.ErrGatewayVerificationFailed(detail)
	}

	now := s.now()
	ok, err := s.txRepo.Transition(ctx, txn.ID, userID,
		domain.TransactionStateAuthenticated, domain.TransactionStateExecuted,
		ports.TransitionUpdate{At: now})
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("transition transaction: %w", err))
	}
	if !ok {
		return nil, apperror.ErrInvalidStateTransition(string(domain.TransactionStateAuthenticated), string(domain.TransactionStateExecuted))
	}
	txn.Apply(domain.TransactionStateExecuted, nil, now)

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("provider_reference", txn.ProviderReference).
		Msg("transaction executed")

	return txn, nil
}

// Get returns a transaction owned by userID.
func (s *TransactionServiceImpl) Get(ctx context.Context, userID, txID uuid.UUID) (*domain.Transaction, error) {
	txn, err := s.txRepo.GetForUser(ctx, txID, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get transaction: %w", err))
	}
	if txn == nil {
		return nil, apperror.ErrTransactionNotFound()
	}
	return txn, nil
}

// List returns summaries of the user's transactions, newest first.
func (s *TransactionServiceImpl) List(ctx context.Context, params ports.TransactionListParams) ([]domain.TransactionSummary, error) {
	if params.Limit <= 0 {
		params.Limit = defaultListLimit
	}
	if params.Limit > maxListLimit {
		params.Limit = maxListLimit
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	txns, err := s.txRepo.List(ctx, params)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list transactions: %w", err))
	}

	out := make([]domain.TransactionSummary, 0, len(txns))
	for i := range txns {
		out = append(out, txns[i].Summary())
	}
	return out, nil
}

func (s *TransactionServiceImpl) idempotencyKey(userID uuid.UUID, clientKey string) string {
	clientKey = strings.TrimSpace(clientKey)
	if clientKey == "" || s.idempCache == nil {
		return ""
	}
	return fmt.Sprintf("initiate:%s:%s", userID, clientKey)
}

// replay returns the transaction previously created under key, if any.
// Cache failures fall through to a fresh initiation.
func (s *TransactionServiceImpl) replay(ctx context.Context, userID uuid.UUID, key string) *domain.Transaction {
	if key == "" {
		return nil
	}
	cached, err := s.idempCache.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("redis idempotency check failed")
		return nil
	}
	if cached == nil {
		return nil
	}
	txID, err := uuid.ParseBytes(cached)
	if err != nil {
		return nil
	}
	txn, err := s.txRepo.GetForUser(ctx, txID, userID)
	if err != nil || txn == nil {
		return nil
	}
	return txn
}

func validateProofs(proofs []domain.FactorProof) error {
	if len(proofs) == 0 {
		return apperror.Validation("at least one biometric factor is required")
	}
	seen := make(map[domain.FactorType]struct{}, len(proofs))
	for _, p := range proofs {
		if !p.Type.IsValid() {
			return apperror.ErrInvalidFactorType(string(p.Type))
		}
		if _, dup := seen[p.Type]; dup {
			return apperror.Validation(fmt.Sprintf("factor %s presented more than once", p.Type))
		}
		seen[p.Type] = struct{}{}
		if p.Template == "" {
			return apperror.Validation(fmt.Sprintf("template for %s is required", p.Type))
		}
	}
	return nil
}
