package db

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
)

var Conn *pgxpool.Pool

// Init connects to Postgres
func Init() {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_NAME"),
	)

	var err error
	Conn, err = pgxpool.New(context.Background(), dsn)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}

	if err = Conn.Ping(context.Background()); err != nil {
		log.Fatalf("Unable to ping database: %v\n", err)
	}

	log.Println("Connected to Postgres successfully")

	// Base identity tables and wallets
	ensureUsersSchema()
	ensureProfileTables()
	ensureWalletTables()

	// Marketplace flow: requests -> proposals -> projects -> milestones
	ensureServiceRequestsTable()
	ensureProposalTables()
	ensureProjectTables()

	// Money movement and billing
	ensurePaymentTables()
	ensureInvoicesTable()

	// Disputes, reviews, messaging, notifications
	ensureDisputesTable()
	ensureReviewTables()
	ensureMessagesTable()
	ensureNotificationsTable()

	// KYC and provider showcase
	ensureKycTables()
	ensurePortfolioTables()
}

func tableExists(name string) bool {
	var exists bool
	err := Conn.QueryRow(context.Background(), `
        SELECT EXISTS (
            SELECT 1 FROM information_schema.tables
            WHERE table_schema = 'public' AND table_name = $1
        )`, name).Scan(&exists)
	if err != nil {
		log.Printf("schema check failed for %s: %v", name, err)
		return false
	}
	return exists
}

// ensureUsersSchema creates the users table and keeps its role constraint
// aligned with what the handlers actually write.
func ensureUsersSchema() {
	ctx := context.Background()
	if !tableExists("users") {
		_, err := Conn.Exec(ctx, `
            CREATE TABLE IF NOT EXISTS users (
                id UUID PRIMARY KEY,
                name TEXT NOT NULL,
                email TEXT NOT NULL UNIQUE,
                password TEXT NOT NULL,
                role TEXT NOT NULL,
                is_active BOOLEAN DEFAULT TRUE,
                kyc_status TEXT DEFAULT 'none',
                created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
            )`)
		if err != nil {
			log.Printf("failed to create users table: %v", err)
			return
		}
	}

	_, _ = Conn.Exec(ctx, `ALTER TABLE users DROP CONSTRAINT IF EXISTS users_role_check`)
	if _, err := Conn.Exec(ctx, `
        ALTER TABLE users
        ADD CONSTRAINT users_role_check
        CHECK (role IN ('customer', 'provider', 'admin'))`); err != nil {
		log.Printf("failed to update users role constraint: %v", err)
	}

	_, _ = Conn.Exec(ctx, `ALTER TABLE users ADD COLUMN IF NOT EXISTS is_active BOOLEAN DEFAULT TRUE`)
	_, _ = Conn.Exec(ctx, `UPDATE users SET is_active = TRUE WHERE is_active IS NULL`)
	_, _ = Conn.Exec(ctx, `ALTER TABLE users ADD COLUMN IF NOT EXISTS kyc_status TEXT DEFAULT 'none'`)
}

// ensureProfileTables creates customer_profiles and provider_profiles
func ensureProfileTables() {
	ctx := context.Background()
	if !tableExists("customer_profiles") {
		if _, err := Conn.Exec(ctx, `
            CREATE TABLE IF NOT EXISTS customer_profiles (
                user_id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
                company_name TEXT,
                website TEXT,
                industry TEXT,
                about TEXT,
                updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
            )`); err != nil {
			log.Printf("failed to create customer_profiles table: %v", err)
		}
	}
	if !tableExists("provider_profiles") {
		if _, err := Conn.Exec(ctx, `
            CREATE TABLE IF NOT EXISTS provider_profiles (
                user_id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
                headline TEXT,
                skills TEXT,
                hourly_rate BIGINT,
                about TEXT,
                updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
            )`); err != nil {
			log.Printf("failed to create provider_profiles table: %v", err)
		}
	}
}

// ensureWalletTables creates wallets, transactions and topups
func ensureWalletTables() {
	ctx := context.Background()
	if !tableExists("wallets") {
		if _, err := Conn.Exec(ctx, `
            CREATE TABLE IF NOT EXISTS wallets (
                user_id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
                balance BIGINT NOT NULL DEFAULT 0,
                escrow BIGINT NOT NULL DEFAULT 0,
                created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
            )`); err != nil {
			log.Printf("failed to create wallets table: %v", err)
		}
	}
	_, _ = Conn.Exec(ctx, `ALTER TABLE wallets ADD COLUMN IF NOT EXISTS escrow BIGINT DEFAULT 0`)
	_, _ = Conn.Exec(ctx, `UPDATE wallets SET escrow = 0 WHERE escrow IS NULL`)

	if !tableExists("transactions") {
		if _, err := Conn.Exec(ctx, `
            CREATE TABLE IF NOT EXISTS transactions (
                id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
                amount BIGINT NOT NULL,
                type TEXT NOT NULL,
                status TEXT NOT NULL,
                reference TEXT,
                created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
            );
            CREATE INDEX IF NOT EXISTS idx_transactions_user ON transactions(user_id, created_at)`); err != nil {
			log.Printf("failed to create transactions table: %v", err)
		}
	}

	if !tableExists("topups") {
		if _, err := Conn.Exec(ctx, `
            CREATE TABLE IF NOT EXISTS topups (
                id UUID PRIMARY KEY,
                user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
                amount BIGINT NOT NULL,
                status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending','confirmed')),
                created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
            )`); err != nil {
			log.Printf("failed to create topups table: %v", err)
		}
	}
}

// ensureServiceRequestsTable creates service_requests
func ensureServiceRequestsTable() {
	ctx := context.Background()
	if !tableExists("service_requests") {
		if _, err := Conn.Exec(ctx, `
            CREATE TABLE IF NOT EXISTS service_requests (
                id UUID PRIMARY KEY,
                customer_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
                title TEXT NOT NULL,
                description TEXT,
                category TEXT,
                budget_min BIGINT NOT NULL,
                budget_max BIGINT NOT NULL,
                deadline TIMESTAMP WITH TIME ZONE,
                status TEXT NOT NULL DEFAULT 'OPEN',
                created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
                updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
            );
            CREATE INDEX IF NOT EXISTS idx_service_requests_customer ON service_requests(customer_id);
            CREATE INDEX IF NOT EXISTS idx_service_requests_status ON service_requests(status)`); err != nil {
			log.Printf("failed to create service_requests table: %v", err)
		}
	}
	_, _ = Conn.Exec(ctx, `ALTER TABLE service_requests DROP CONSTRAINT IF EXISTS service_requests_status_check`)
	if _, err := Conn.Exec(ctx, `
        ALTER TABLE service_requests
        ADD CONSTRAINT service_requests_status_check
        CHECK (status IN ('OPEN', 'MATCHED', 'CANCELLED'))`); err != nil {
		log.Printf("failed to update service_requests status constraint: %v", err)
	}
}

// ensureProposalTables creates proposals and proposal_milestones
func ensureProposalTables() {
	ctx := context.Background()
	if !tableExists("proposals") {
		if _, err := Conn.Exec(ctx, `
            CREATE TABLE IF NOT EXISTS proposals (
                id UUID PRIMARY KEY,
                request_id UUID NOT NULL REFERENCES service_requests(id) ON DELETE CASCADE,
                provider_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
                bid_amount BIGINT NOT NULL,
                cover_letter TEXT,
                delivery_days INTEGER,
                status TEXT NOT NULL DEFAULT 'PENDING' CHECK (status IN ('PENDING','ACCEPTED','DECLINED','WITHDRAWN')),
                created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
            );
            CREATE INDEX IF NOT EXISTS idx_proposals_request ON proposals(request_id);
            CREATE INDEX IF NOT EXISTS idx_proposals_provider ON proposals(provider_id)`); err != nil {
			log.Printf("failed to create proposals table: %v", err)
		}
	}
	if !tableExists("proposal_milestones") {
		if _, err := Conn.Exec(ctx, `
            CREATE TABLE IF NOT EXISTS proposal_milestones (
                id UUID PRIMARY KEY,
                proposal_id UUID NOT NULL REFERENCES proposals(id) ON DELETE CASCADE,
                title TEXT NOT NULL,
                amount BIGINT NOT NULL,
                sequence INTEGER NOT NULL,
                due_days INTEGER
            );
            CREATE INDEX IF NOT EXISTS idx_proposal_milestones_proposal ON proposal_milestones(proposal_id)`); err != nil {
			log.Printf("failed to create proposal_milestones table: %v", err)
		}
	}
}

// ensureProjectTables creates projects and milestones, and keeps the
// milestone status constraint in sync with the runtime state machine.
func ensureProjectTables() {
	ctx := context.Background()
	if !tableExists("projects") {
		if _, err := Conn.Exec(ctx, `
            CREATE TABLE IF NOT EXISTS projects (
                id UUID PRIMARY KEY,
                request_id UUID NOT NULL REFERENCES service_requests(id),
                proposal_id UUID NOT NULL REFERENCES proposals(id),
                customer_id UUID NOT NULL REFERENCES users(id),
                provider_id UUID NOT NULL REFERENCES users(id),
                title TEXT NOT NULL,
                bid_amount BIGINT NOT NULL,
                status TEXT NOT NULL DEFAULT 'IN_PROGRESS',
                milestones_locked BOOLEAN NOT NULL DEFAULT FALSE,
                company_approved BOOLEAN NOT NULL DEFAULT FALSE,
                provider_approved BOOLEAN NOT NULL DEFAULT FALSE,
                created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
                updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
            );
            CREATE INDEX IF NOT EXISTS idx_projects_customer ON projects(customer_id);
            CREATE INDEX IF NOT EXISTS idx_projects_provider ON projects(provider_id)`); err != nil {
			log.Printf("failed to create projects table: %v", err)
		}
	}
	_, _ = Conn.Exec(ctx, `ALTER TABLE projects DROP CONSTRAINT IF EXISTS projects_status_check`)
	if _, err := Conn.Exec(ctx, `
        ALTER TABLE projects
        ADD CONSTRAINT projects_status_check
        CHECK (status IN ('IN_PROGRESS', 'COMPLETED', 'DISPUTED'))`); err != nil {
		log.Printf("failed to update projects status constraint: %v", err)
	}

	if !tableExists("milestones") {
		if _, err := Conn.Exec(ctx, `
            CREATE TABLE IF NOT EXISTS milestones (
                id UUID PRIMARY KEY,
                project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
                title TEXT NOT NULL,
                amount BIGINT NOT NULL,
                sequence INTEGER NOT NULL,
                due_days INTEGER,
                status TEXT NOT NULL DEFAULT 'DRAFT',
                prior_status TEXT,
                note TEXT,
                created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
                updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
            );
            CREATE INDEX IF NOT EXISTS idx_milestones_project ON milestones(project_id, sequence)`); err != nil {
			log.Printf("failed to create milestones table: %v", err)
		}
	}
	_, _ = Conn.Exec(ctx, `ALTER TABLE milestones DROP CONSTRAINT IF EXISTS milestones_status_check`)
	if _, err := Conn.Exec(ctx, `
        ALTER TABLE milestones
        ADD CONSTRAINT milestones_status_check
        CHECK (status IN (
            'DRAFT', 'LOCKED', 'IN_PROGRESS', 'SUBMITTED',
            'APPROVED', 'REJECTED', 'PAID', 'DISPUTED'
        ))`); err != nil {
		log.Printf("failed to update milestones status constraint: %v", err)
	}
}

// ensurePaymentTables creates payments
func ensurePaymentTables() {
	ctx := context.Background()
	if !tableExists("payments") {
		if _, err := Conn.Exec(ctx, `
            CREATE TABLE IF NOT EXISTS payments (
                id UUID PRIMARY KEY,
                milestone_id UUID NOT NULL REFERENCES milestones(id) ON DELETE CASCADE,
                project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
                customer_id UUID NOT NULL REFERENCES users(id),
                provider_id UUID NOT NULL REFERENCES users(id),
                amount BIGINT NOT NULL,
                status TEXT NOT NULL DEFAULT 'PENDING',
                gateway_ref TEXT,
                created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
                updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
            );
            CREATE INDEX IF NOT EXISTS idx_payments_milestone ON payments(milestone_id);
            CREATE INDEX IF NOT EXISTS idx_payments_project ON payments(project_id)`); err != nil {
			log.Printf("failed to create payments table: %v", err)
		}
	}
	_, _ = Conn.Exec(ctx, `ALTER TABLE payments DROP CONSTRAINT IF EXISTS payments_status_check`)
	if _, err := Conn.Exec(ctx, `
        ALTER TABLE payments
        ADD CONSTRAINT payments_status_check
        CHECK (status IN ('PENDING', 'IN_PROGRESS', 'ESCROWED', 'RELEASED', 'FAILED'))`); err != nil {
		log.Printf("failed to update payments status constraint: %v", err)
	}
}

// ensureInvoicesTable creates invoices written at payment release
func ensureInvoicesTable() {
	ctx := context.Background()
	if tableExists("invoices") {
		return
	}
	if _, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS invoices (
            id UUID PRIMARY KEY,
            payment_id UUID NOT NULL REFERENCES payments(id) ON DELETE CASCADE,
            project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
            customer_id UUID NOT NULL REFERENCES users(id),
            provider_id UUID NOT NULL REFERENCES users(id),
            amount BIGINT NOT NULL,
            number TEXT NOT NULL UNIQUE,
            issued_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_invoices_customer ON invoices(customer_id);
        CREATE INDEX IF NOT EXISTS idx_invoices_provider ON invoices(provider_id)`); err != nil {
		log.Printf("failed to create invoices table: %v", err)
	}
}

// ensureDisputesTable creates disputes. The status constraint carries the
// superset of values the handlers write, including the REJECTED stamp used
// by the dismissal path.
func ensureDisputesTable() {
	ctx := context.Background()
	if !tableExists("disputes") {
		if _, err := Conn.Exec(ctx, `
            CREATE TABLE IF NOT EXISTS disputes (
                id UUID PRIMARY KEY,
                project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
                milestone_id UUID NULL REFERENCES milestones(id) ON DELETE SET NULL,
                payment_id UUID NULL REFERENCES payments(id) ON DELETE SET NULL,
                raised_by UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
                reason TEXT NOT NULL,
                status TEXT NOT NULL DEFAULT 'OPEN',
                resolution_note TEXT,
                transaction_ref TEXT,
                resolved_by UUID NULL REFERENCES users(id) ON DELETE SET NULL,
                created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
                resolved_at TIMESTAMP WITH TIME ZONE NULL
            );
            CREATE INDEX IF NOT EXISTS idx_disputes_project ON disputes(project_id);
            CREATE INDEX IF NOT EXISTS idx_disputes_status ON disputes(status)`); err != nil {
			log.Printf("failed to create disputes table: %v", err)
		}
	}
	_, _ = Conn.Exec(ctx, `ALTER TABLE disputes DROP CONSTRAINT IF EXISTS disputes_status_check`)
	if _, err := Conn.Exec(ctx, `
        ALTER TABLE disputes
        ADD CONSTRAINT disputes_status_check
        CHECK (status IN ('OPEN', 'UNDER_REVIEW', 'RESOLVED', 'CLOSED', 'REJECTED'))`); err != nil {
		log.Printf("failed to update disputes status constraint: %v", err)
	}
}

// ensureReviewTables creates reviews and review_replies
func ensureReviewTables() {
	ctx := context.Background()
	if !tableExists("reviews") {
		if _, err := Conn.Exec(ctx, `
            CREATE TABLE IF NOT EXISTS reviews (
                id UUID PRIMARY KEY,
                project_id UUID NOT NULL UNIQUE REFERENCES projects(id) ON DELETE CASCADE,
                customer_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
                provider_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
                rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
                comment TEXT,
                created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
            );
            CREATE INDEX IF NOT EXISTS idx_reviews_provider ON reviews(provider_id)`); err != nil {
			log.Printf("failed to create reviews table: %v", err)
		}
	}
	if !tableExists("review_replies") {
		if _, err := Conn.Exec(ctx, `
            CREATE TABLE IF NOT EXISTS review_replies (
                id UUID PRIMARY KEY,
                review_id UUID NOT NULL UNIQUE REFERENCES reviews(id) ON DELETE CASCADE,
                provider_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
                content TEXT NOT NULL,
                created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
            )`); err != nil {
			log.Printf("failed to create review_replies table: %v", err)
		}
	}
}

// ensureMessagesTable creates messages for project threads
func ensureMessagesTable() {
	ctx := context.Background()
	if tableExists("messages") {
		return
	}
	if _, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS messages (
            id UUID PRIMARY KEY,
            project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
            sender_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            recipient_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            content TEXT NOT NULL,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            read_at TIMESTAMP WITH TIME ZONE NULL
        );
        CREATE INDEX IF NOT EXISTS idx_messages_project ON messages(project_id, created_at)`); err != nil {
		log.Printf("failed to create messages table: %v", err)
	}
}

// ensureNotificationsTable creates notifications table for in-app alerts
func ensureNotificationsTable() {
	ctx := context.Background()
	if tableExists("notifications") {
		return
	}
	if _, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS notifications (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            type TEXT NOT NULL,
            title TEXT NOT NULL,
            body TEXT,
            reference UUID NULL,
            metadata JSONB NULL,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            read_at TIMESTAMP WITH TIME ZONE NULL
        );
        CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications(user_id, created_at);
        CREATE INDEX IF NOT EXISTS idx_notifications_user_unread ON notifications(user_id) WHERE read_at IS NULL`); err != nil {
		log.Printf("failed to create notifications table: %v", err)
	}
}

// ensureKycTables creates kyc_documents
func ensureKycTables() {
	ctx := context.Background()
	if tableExists("kyc_documents") {
		return
	}
	if _, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS kyc_documents (
            id UUID PRIMARY KEY,
            user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            doc_type TEXT NOT NULL,
            file_path TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'uploaded' CHECK (status IN ('uploaded','verified','rejected')),
            note TEXT,
            reviewed_by UUID NULL REFERENCES users(id) ON DELETE SET NULL,
            reviewed_at TIMESTAMP WITH TIME ZONE NULL,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_kyc_documents_user ON kyc_documents(user_id)`); err != nil {
		log.Printf("failed to create kyc_documents table: %v", err)
	}
}

// ensurePortfolioTables creates certifications and portfolio_items
func ensurePortfolioTables() {
	ctx := context.Background()
	if !tableExists("certifications") {
		if _, err := Conn.Exec(ctx, `
            CREATE TABLE IF NOT EXISTS certifications (
                id UUID PRIMARY KEY,
                user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
                title TEXT NOT NULL,
                issuer TEXT,
                year INTEGER,
                file_path TEXT,
                created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
            )`); err != nil {
			log.Printf("failed to create certifications table: %v", err)
		}
	}
	if !tableExists("portfolio_items") {
		if _, err := Conn.Exec(ctx, `
            CREATE TABLE IF NOT EXISTS portfolio_items (
                id UUID PRIMARY KEY,
                user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
                title TEXT NOT NULL,
                description TEXT,
                url TEXT,
                file_path TEXT,
                created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
            )`); err != nil {
			log.Printf("failed to create portfolio_items table: %v", err)
		}
	}
}
