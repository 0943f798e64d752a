package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/movibes/internal/models"
	"github.com/magabrotheeeer/movibes/internal/storage"
)

const subscriptionColumns = `s.id, s.user_id, s.plan_type_id, s.status, s.starts_at, s.expires_at,
	s.amount_paid, s.external_transaction_id, s.payment_method, s.auto_renew, s.user_cancelled,
	s.cancelled_at, s.renewed_from_id, s.notes, s.created_at, s.updated_at, ` + planColumns

const subscriptionFrom = `FROM subscriptions s JOIN plan_types p ON p.id = s.plan_type_id`

func scanSubscription(row interface{ Scan(...any) error }) (models.Subscription, error) {
	var (
		sub                  models.Subscription
		plan                 models.PlanType
		status, role, period string
		cancelledAt          sql.NullTime
		renewedFrom          sql.NullInt64
	)
	dest := []any{&sub.ID, &sub.UserID, &sub.PlanTypeID, &status, &sub.StartsAt, &sub.ExpiresAt,
		&sub.AmountPaid, &sub.ExternalTransactionID, &sub.PaymentMethod, &sub.AutoRenew, &sub.UserCancelled,
		&cancelledAt, &renewedFrom, &sub.Notes, &sub.CreatedAt, &sub.UpdatedAt}
	dest = append(dest, planDest(&plan, &role, &period)...)
	if err := row.Scan(dest...); err != nil {
		return models.Subscription{}, err
	}

	sub.Status = models.SubscriptionStatus(status)
	if cancelledAt.Valid {
		t := cancelledAt.Time
		sub.CancelledAt = &t
	}
	if renewedFrom.Valid {
		id := renewedFrom.Int64
		sub.RenewedFromID = &id
	}
	plan.TargetRole = models.Role(role)
	plan.Period = models.BillingPeriod(period)
	sub.Plan = &plan
	return sub, nil
}

func (s *Storage) listSubscriptions(ctx context.Context, op, where string, args ...any) ([]models.Subscription, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT `+subscriptionColumns+` `+subscriptionFrom+` `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	result := make([]models.Subscription, 0)
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

const insertSubscription = `INSERT INTO subscriptions (user_id, plan_type_id, status, starts_at, expires_at,
	    amount_paid, external_transaction_id, payment_method, auto_renew, user_cancelled, cancelled_at,
	    renewed_from_id, notes, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)`

func insertArgs(sub models.Subscription, now time.Time) []any {
	return []any{sub.UserID, sub.PlanTypeID, string(sub.Status), sub.StartsAt, sub.ExpiresAt,
		sub.AmountPaid, sub.ExternalTransactionID, sub.PaymentMethod, sub.AutoRenew, sub.UserCancelled,
		sub.CancelledAt, sub.RenewedFromID, sub.Notes, now}
}

// CreateSubscription сохраняет подписку и возвращает её ID.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) (int64, error) {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var id int64
	err := s.DB.QueryRowContext(ctx, insertSubscription+` RETURNING id`,
		insertArgs(sub, time.Now().UTC())...).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ListSubscriptionsByUser все подписки пользователя, новые первыми.
func (s *Storage) ListSubscriptionsByUser(ctx context.Context, userID string) ([]models.Subscription, error) {
	return s.listSubscriptions(ctx, "storage.ListSubscriptionsByUser",
		`WHERE s.user_id = $1 ORDER BY s.created_at DESC, s.id DESC`, userID)
}

// GetSubscription подписка пользователя. Чужая подписка неотличима от несуществующей.
func (s *Storage) GetSubscription(ctx context.Context, userID string, id int64) (*models.Subscription, error) {
	const op = "storage.GetSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	row := s.DB.QueryRowContext(ctx, `SELECT `+subscriptionColumns+` `+subscriptionFrom+`
		WHERE s.id = $1 AND s.user_id = $2`, id, userID)
	sub, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrSubscriptionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &sub, nil
}

// GetSubscriptionByTransaction ищет подписку по идентификатору платежа.
func (s *Storage) GetSubscriptionByTransaction(ctx context.Context, transactionID string) (*models.Subscription, error) {
	const op = "storage.GetSubscriptionByTransaction"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}
	if transactionID == "" {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrSubscriptionNotFound)
	}

	row := s.DB.QueryRowContext(ctx, `SELECT `+subscriptionColumns+` `+subscriptionFrom+`
		WHERE s.external_transaction_id = $1 ORDER BY s.id DESC LIMIT 1`, transactionID)
	sub, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrSubscriptionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &sub, nil
}

// CancelSubscription отмечает подписку пользователя отменённой одним UPDATE.
// Первая отмена фиксирует cancelled_at, повторные его не меняют.
func (s *Storage) CancelSubscription(ctx context.Context, userID string, id int64, now time.Time) error {
	const op = "storage.CancelSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE subscriptions
		SET user_cancelled = TRUE,
		    cancelled_at = COALESCE(cancelled_at, $3),
		    auto_renew = FALSE,
		    updated_at = $3
		WHERE id = $1 AND user_id = $2`, id, userID, now)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrSubscriptionNotFound)
	}
	return nil
}

// RenewSubscription продлевает подписку sourceID в одной транзакции. Исходная строка
// блокируется, build получает её актуальное состояние и строит продление или nil.
// Уникальность renewed_from_id гарантирует не более одного продления на строку:
// если продление уже есть, возвращается nil без ошибки.
func (s *Storage) RenewSubscription(ctx context.Context, sourceID int64,
	build func(models.Subscription) *models.Subscription) (*models.Subscription, error) {
	const op = "storage.RenewSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rollback(tx)

	row := tx.QueryRowContext(ctx, `SELECT `+subscriptionColumns+` `+subscriptionFrom+`
		WHERE s.id = $1 FOR UPDATE OF s`, sourceID)
	source, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrSubscriptionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	next := build(source)
	if next == nil {
		return nil, nil
	}

	now := time.Now().UTC()
	var id int64
	err = tx.QueryRowContext(ctx, insertSubscription+`
		ON CONFLICT (renewed_from_id) DO NOTHING
		RETURNING id`, insertArgs(*next, now)...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	next.ID = id
	next.CreatedAt = now
	next.UpdatedAt = now
	return next, nil
}

// SetTransaction привязывает к pending подписке идентификатор платежа.
func (s *Storage) SetTransaction(ctx context.Context, id int64, transactionID string) error {
	const op = "storage.SetTransaction"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE subscriptions
		SET external_transaction_id = $2, updated_at = NOW()
		WHERE id = $1`, id, transactionID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrSubscriptionNotFound)
	}
	return nil
}

// ActivateSubscription переводит pending подписку в active. Возвращает false,
// если подписка уже не в pending.
func (s *Storage) ActivateSubscription(ctx context.Context, id int64, transactionID string) (bool, error) {
	const op = "storage.ActivateSubscription"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE subscriptions
		SET status = 'active',
		    external_transaction_id = CASE WHEN $2 <> '' THEN $2 ELSE external_transaction_id END,
		    updated_at = NOW()
		WHERE id = $1 AND status = 'pending'`, id, transactionID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if n > 0 {
		return true, nil
	}

	var exists bool
	if err := s.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM subscriptions WHERE id = $1)`, id).
		Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return false, fmt.Errorf("%s: %w", op, storage.ErrSubscriptionNotFound)
	}
	return false, nil
}

// FindRenewable подписки с автопродлением, истекающие до before и ещё не продлённые.
func (s *Storage) FindRenewable(ctx context.Context, before time.Time) ([]models.Subscription, error) {
	return s.listSubscriptions(ctx, "storage.FindRenewable", `
		WHERE s.auto_renew AND NOT s.user_cancelled
		  AND s.status IN ('active', 'expired')
		  AND s.expires_at <= $1
		  AND NOT EXISTS (SELECT 1 FROM subscriptions r WHERE r.renewed_from_id = s.id)
		ORDER BY s.expires_at, s.id`, before)
}

// FindExpiringBetween активные неотменённые подписки с expires_at в [from, to).
func (s *Storage) FindExpiringBetween(ctx context.Context, from, to time.Time) ([]models.Subscription, error) {
	return s.listSubscriptions(ctx, "storage.FindExpiringBetween", `
		WHERE s.status = 'active' AND NOT s.user_cancelled
		  AND s.expires_at >= $1 AND s.expires_at < $2
		ORDER BY s.expires_at, s.id`, from, to)
}

// ExpireSubscriptions переводит просроченные активные подписки в expired.
func (s *Storage) ExpireSubscriptions(ctx context.Context, now time.Time) (int64, error) {
	const op = "storage.ExpireSubscriptions"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE subscriptions
		SET status = 'expired', updated_at = $1
		WHERE status = 'active' AND expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
