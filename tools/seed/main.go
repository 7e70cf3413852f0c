package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xtopay/checkout-backend/config"
	"github.com/xtopay/checkout-backend/database"
	"github.com/xtopay/checkout-backend/models"
	"github.com/xtopay/checkout-backend/repository"
)

func main() {
	var (
		businessID, name, email, apiID, apiKey string
		payRef, channel, phone                 string
		feeRate                                float64
	)
	flag.StringVar(&businessID, "business", "0800000", "business id to provision")
	flag.StringVar(&name, "name", "Demo Merchant", "business display name")
	flag.StringVar(&email, "email", "merchant@example.com", "business email")
	flag.StringVar(&apiID, "api-id", "demo_id", "api_id credential")
	flag.StringVar(&apiKey, "api-key", "demo_key", "api_key credential")
	flag.StringVar(&payRef, "pay", "", "client reference of a checkout to mark paid")
	flag.StringVar(&channel, "channel", "mtn", "payment channel recorded with -pay")
	flag.StringVar(&phone, "phone", "", "customer phone recorded with -pay")
	flag.Float64Var(&feeRate, "fee-rate", 0.02, "fee as a fraction of the amount")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.ConnectPostgres(ctx, logger, cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer database.Close(db) //nolint:errcheck

	created, err := seedBusiness(ctx, repository.NewGormBusinessRepository(db), &models.Business{
		BusinessID: businessID,
		Name:       name,
		Email:      email,
		Currency:   "GHS",
		APIID:      apiID,
		APIKey:     apiKey,
	})
	if err != nil {
		log.Fatalf("seed business: %v", err)
	}
	if created {
		log.Printf("business %s created", businessID)
	} else {
		log.Printf("business %s already exists", businessID)
	}

	if payRef == "" {
		return
	}
	p, err := attachPayment(ctx,
		repository.NewGormCheckoutRepository(db),
		repository.NewGormPaymentRepository(db),
		payRef, channel, phone, feeRate, time.Now().UTC(),
	)
	if err != nil {
		log.Fatalf("attach payment: %v", err)
	}
	log.Printf("payment %s recorded for checkout %s (settlement %.2f)", p.TransactionID, p.CheckoutID, p.SettlementAmount)
}

// seedBusiness inserts b unless a business with the same id exists.
func seedBusiness(ctx context.Context, repo repository.BusinessRepository, b *models.Business) (bool, error) {
	_, err := repo.FindByBusinessID(ctx, b.BusinessID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	if err := repo.Create(ctx, b); err != nil {
		return false, err
	}
	return true, nil
}

// attachPayment records a payment against the checkout with the given
// client reference, which makes its status read as paid.
func attachPayment(
	ctx context.Context,
	checkouts repository.CheckoutRepository,
	payments repository.PaymentRepository,
	clientReference, channel, phone string,
	feeRate float64,
	paidAt time.Time,
) (*models.Payment, error) {
	checkout, err := checkouts.FindByClientReference(ctx, clientReference)
	if err != nil {
		return nil, fmt.Errorf("checkout %s: %w", clientReference, err)
	}
	if checkout.FirstPayment() != nil {
		return nil, fmt.Errorf("checkout %s is already paid", clientReference)
	}

	fees := roundCents(checkout.Amount * feeRate)
	p := &models.Payment{
		CheckoutID:       checkout.CheckoutID,
		PaidAt:           paidAt,
		Channel:          channel,
		TransactionID:    "txn_" + uuid.NewString(),
		CustomerPhone:    phone,
		Fees:             fees,
		SettlementAmount: roundCents(checkout.Amount - fees),
	}
	if err := payments.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func roundCents(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
