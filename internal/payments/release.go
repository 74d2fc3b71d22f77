package payments

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/worklane/worklane/internal/alerts"
	"github.com/worklane/worklane/internal/db"
)

// ReleaseMilestonePayment moves an escrowed milestone payment from the
// customer's escrow to the provider's balance, stamps the payment RELEASED,
// the milestone PAID, and writes the invoice plus both transaction legs in
// one database transaction. Returns false when no escrowed payment exists
// for the milestone.
func ReleaseMilestonePayment(ctx context.Context, milestoneID string) (bool, error) {
	var paymentID, projectID, customerID, providerID string
	var amount int64
	err := db.Conn.QueryRow(ctx,
		`SELECT id, project_id, customer_id, provider_id, amount
         FROM payments WHERE milestone_id = $1 AND status = 'ESCROWED'`, milestoneID,
	).Scan(&paymentID, &projectID, &customerID, &providerID, &amount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("fetch escrowed payment: %w", err)
	}

	tx, err := db.Conn.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin release: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err = tx.Exec(ctx,
		`UPDATE wallets SET escrow = escrow - $1 WHERE user_id = $2`, amount, customerID); err != nil {
		return false, fmt.Errorf("debit customer escrow: %w", err)
	}
	if _, err = tx.Exec(ctx,
		`UPDATE wallets SET balance = balance + $1 WHERE user_id = $2`, amount, providerID); err != nil {
		return false, fmt.Errorf("credit provider balance: %w", err)
	}
	if _, err = tx.Exec(ctx,
		`UPDATE payments SET status = 'RELEASED', updated_at = NOW() WHERE id = $1`, paymentID); err != nil {
		return false, fmt.Errorf("update payment: %w", err)
	}
	if _, err = tx.Exec(ctx,
		`UPDATE milestones SET status = 'PAID', updated_at = NOW() WHERE id = $1`, milestoneID); err != nil {
		return false, fmt.Errorf("update milestone: %w", err)
	}

	now := time.Now()
	invoiceNumber := fmt.Sprintf("INV-%s-%s", now.Format("200601"), uuid.New().String()[:8])
	if _, err = tx.Exec(ctx,
		`INSERT INTO invoices (id, payment_id, project_id, customer_id, provider_id, amount, number, issued_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uuid.New().String(), paymentID, projectID, customerID, providerID, amount, invoiceNumber, now,
	); err != nil {
		return false, fmt.Errorf("write invoice: %w", err)
	}

	if _, err = tx.Exec(ctx,
		`INSERT INTO transactions (id, user_id, type, amount, status, reference, created_at)
         VALUES ($1, $2, 'escrow_release', $3, 'completed', $4, $5),
                ($6, $7, 'milestone_payout', $3, 'completed', $4, $5)`,
		uuid.New().String(), customerID, amount, paymentID, now,
		uuid.New().String(), providerID,
	); err != nil {
		return false, fmt.Errorf("record transactions: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit release: %w", err)
	}

	ref := milestoneID
	if nerr := alerts.CreateNotification(providerID, "payment:released", "Milestone payment released",
		fmt.Sprintf("Payment of %d was released to your wallet. Invoice %s.", amount, invoiceNumber), &ref, nil); nerr != nil {
		log.Printf("payout notification failed: %v", nerr)
	}
	var email string
	_ = db.Conn.QueryRow(ctx, `SELECT email FROM users WHERE id = $1`, providerID).Scan(&email)
	if email != "" {
		_ = alerts.EnqueueMilestonePaid(milestoneID, projectID, providerID, email, amount)
	}

	return true, nil
}

// RefundEscrowedForProject returns every escrowed payment on a project to
// the customer's balance and stamps those payments FAILED. Used when a
// dispute resolution unwinds the project.
func RefundEscrowedForProject(ctx context.Context, projectID string) error {
	rows, err := db.Conn.Query(ctx,
		`SELECT id, customer_id, amount FROM payments
         WHERE project_id = $1 AND status = 'ESCROWED'`, projectID)
	if err != nil {
		return fmt.Errorf("fetch escrowed payments: %w", err)
	}
	type refund struct {
		paymentID  string
		customerID string
		amount     int64
	}
	var refunds []refund
	for rows.Next() {
		var r refund
		if err := rows.Scan(&r.paymentID, &r.customerID, &r.amount); err != nil {
			rows.Close()
			return fmt.Errorf("scan escrowed payment: %w", err)
		}
		refunds = append(refunds, r)
	}
	rows.Close()

	if len(refunds) == 0 {
		return nil
	}

	tx, err := db.Conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin refund: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	for _, r := range refunds {
		if _, err = tx.Exec(ctx,
			`UPDATE wallets SET escrow = escrow - $1, balance = balance + $1 WHERE user_id = $2`,
			r.amount, r.customerID); err != nil {
			return fmt.Errorf("refund wallet: %w", err)
		}
		if _, err = tx.Exec(ctx,
			`UPDATE payments SET status = 'FAILED', updated_at = NOW() WHERE id = $1`, r.paymentID); err != nil {
			return fmt.Errorf("fail payment: %w", err)
		}
		if _, err = tx.Exec(ctx,
			`INSERT INTO transactions (id, user_id, type, amount, status, reference, created_at)
             VALUES ($1, $2, 'escrow_refund', $3, 'completed', $4, $5)`,
			uuid.New().String(), r.customerID, r.amount, r.paymentID, now); err != nil {
			return fmt.Errorf("record refund: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit refund: %w", err)
	}
	return nil
}
