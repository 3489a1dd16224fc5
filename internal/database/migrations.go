package database

import (
	"database/sql"
	"fmt"
)

// RunMigrations creates the schema if it does not exist yet.  Statements
// are idempotent so the server can run them on every boot.
func RunMigrations(db *sql.DB) error {
	migrations := []string{
		createUsersTable,
		createRefreshTokensTable,
		createExamRoundsTable,
		createBookingsTable,
	}
	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
    id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
    email         VARCHAR(255) NOT NULL UNIQUE,
    password_hash VARCHAR(100) NOT NULL,
    role          VARCHAR(20)  NOT NULL DEFAULT 'APPLICANT',
    is_active     BOOLEAN      NOT NULL DEFAULT TRUE,
    created_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

const createRefreshTokensTable = `
CREATE TABLE IF NOT EXISTS refresh_tokens (
    id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
    user_id    BIGINT UNSIGNED NOT NULL,
    token_hash CHAR(64)  NOT NULL UNIQUE,
    expires_at DATETIME  NOT NULL,
    revoked_at DATETIME  NULL,
    created_at DATETIME  NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CONSTRAINT fk_refresh_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

const createExamRoundsTable = `
CREATE TABLE IF NOT EXISTS exam_rounds (
    id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
    exam_date     DATE        NOT NULL,
    exam_time     VARCHAR(10) NOT NULL,
    max_seats     INT UNSIGNED NOT NULL,
    current_seats INT UNSIGNED NOT NULL DEFAULT 0,
    is_active     BOOLEAN     NOT NULL DEFAULT TRUE,
    created_at    DATETIME    NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at    DATETIME    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
    UNIQUE KEY uq_round_slot (exam_date, exam_time),
    CHECK (exam_time IN ('MORNING', 'AFTERNOON')),
    CHECK (current_seats <= max_seats)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

// ON DELETE RESTRICT on exam_round_id backs the rule that a round with
// bookings cannot be removed.
const createBookingsTable = `
CREATE TABLE IF NOT EXISTS bookings (
    id                BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
    booking_code      VARCHAR(20)  NOT NULL UNIQUE,
    exam_round_id     BIGINT UNSIGNED NOT NULL,
    applicant_type    VARCHAR(20)  NOT NULL,
    full_name         VARCHAR(255) NOT NULL,
    email             VARCHAR(255) NOT NULL,
    phone             VARCHAR(30)  NOT NULL,
    price             INT UNSIGNED NOT NULL,
    payment_method    VARCHAR(20)  NOT NULL,
    payment_status    VARCHAR(20)  NOT NULL DEFAULT 'PENDING',
    id_proof_url      VARCHAR(500) NULL,
    payment_proof_url VARCHAR(500) NULL,
    owner_user_id     BIGINT UNSIGNED NOT NULL,
    created_at        DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
    confirmed_at      DATETIME     NULL,
    KEY idx_bookings_owner (owner_user_id),
    KEY idx_bookings_status (payment_status),
    CONSTRAINT fk_booking_round FOREIGN KEY (exam_round_id) REFERENCES exam_rounds(id) ON DELETE RESTRICT,
    CONSTRAINT fk_booking_owner FOREIGN KEY (owner_user_id) REFERENCES users(id) ON DELETE RESTRICT,
    CHECK (payment_status IN ('PENDING', 'VERIFIED', 'REJECTED'))
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`
