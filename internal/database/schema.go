package database

import (
	"context"
	"database/sql"
)

// schema lists the DDL executed at startup. Statements are idempotent so
// the bootstrap can run on every boot. Money columns are BIGINT minor
// units; timestamps are UTC DATETIME.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		email VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		nickname VARCHAR(100) NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_refresh_tokens_hash (token_hash),
		KEY idx_refresh_tokens_user (user_id),
		CONSTRAINT fk_refresh_tokens_user FOREIGN KEY (user_id) REFERENCES users (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS categories (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		name VARCHAR(100) NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_categories_name (name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS auctions (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		seller_id BIGINT UNSIGNED NOT NULL,
		category_id BIGINT UNSIGNED NULL,
		title VARCHAR(255) NOT NULL,
		description TEXT NULL,
		image_url VARCHAR(500) NULL,
		start_price BIGINT NOT NULL,
		current_price BIGINT NOT NULL,
		immediate_purchase_price BIGINT NULL,
		status ENUM('ongoing','ended') NOT NULL DEFAULT 'ongoing',
		close_time DATETIME NOT NULL,
		winner_id BIGINT UNSIGNED NULL,
		winning_bid_amount BIGINT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_auctions_status_close (status, close_time),
		KEY idx_auctions_seller (seller_id),
		KEY idx_auctions_category (category_id),
		CONSTRAINT fk_auctions_seller FOREIGN KEY (seller_id) REFERENCES users (id),
		CONSTRAINT fk_auctions_category FOREIGN KEY (category_id) REFERENCES categories (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS bids (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		auction_id BIGINT UNSIGNED NOT NULL,
		bidder_id BIGINT UNSIGNED NOT NULL,
		amount BIGINT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_bids_auction_amount (auction_id, amount),
		KEY idx_bids_bidder (bidder_id),
		CONSTRAINT fk_bids_auction FOREIGN KEY (auction_id) REFERENCES auctions (id),
		CONSTRAINT fk_bids_bidder FOREIGN KEY (bidder_id) REFERENCES users (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS likes (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id BIGINT UNSIGNED NOT NULL,
		auction_id BIGINT UNSIGNED NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_likes_user_auction (user_id, auction_id),
		CONSTRAINT fk_likes_user FOREIGN KEY (user_id) REFERENCES users (id),
		CONSTRAINT fk_likes_auction FOREIGN KEY (auction_id) REFERENCES auctions (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// defaultCategories seeds the lookup table. INSERT IGNORE keeps the
// bootstrap idempotent.
var defaultCategories = []string{
	"전자제품", "패션", "가구", "도서", "스포츠", "기타",
}

// EnsureSchema creates all tables and seeds the category lookup table.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, ddl := range schema {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return err
		}
	}
	for _, name := range defaultCategories {
		if _, err := db.ExecContext(ctx,
			"INSERT IGNORE INTO categories (name) VALUES (?)", name); err != nil {
			return err
		}
	}
	return nil
}
