package models

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"
)

// Business is a merchant account provisioned out-of-band. Checkouts are
// created on its behalf and it owns the api_id/api_key pair.
type Business struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	BusinessID string    `gorm:"column:business_id;type:varchar(64);uniqueIndex;not null" json:"business_id"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	Email      string    `gorm:"type:varchar(255)" json:"email"`
	Currency   string    `gorm:"type:varchar(10);not null;default:'GHS'" json:"currency"`
	LogoURL    string    `gorm:"column:logo_url;type:varchar(1024)" json:"logo_url"`
	APIID      string    `gorm:"column:api_id;type:varchar(128);not null" json:"-"`
	APIKey     string    `gorm:"column:api_key;type:varchar(256);not null" json:"-"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// CredentialHash stands in for APIID/APIKey on rows read from the cache.
	CredentialHash string `gorm:"-" json:"-"`
}

func (Business) TableName() string { return "business" }

// CredentialDigest is the hex SHA-256 of an api_id/api_key pair.
func CredentialDigest(apiID, apiKey string) string {
	sum := sha256.Sum256([]byte(apiID + "\x00" + apiKey))
	return hex.EncodeToString(sum[:])
}

// Digest returns CredentialHash, or derives it from the stored pair.
func (b *Business) Digest() string {
	if b.CredentialHash != "" {
		return b.CredentialHash
	}
	return CredentialDigest(b.APIID, b.APIKey)
}

// CredentialsMatch reports whether both api_id and api_key equal the stored values.
func (b *Business) CredentialsMatch(apiID, apiKey string) bool {
	if b.APIKey == "" && b.CredentialHash != "" {
		return subtle.ConstantTimeCompare([]byte(b.CredentialHash), []byte(CredentialDigest(apiID, apiKey))) == 1
	}
	idOK := subtle.ConstantTimeCompare([]byte(b.APIID), []byte(apiID)) == 1
	keyOK := subtle.ConstantTimeCompare([]byte(b.APIKey), []byte(apiKey)) == 1
	return idOK && keyOK
}

// Info returns the public projection of the business.
func (b *Business) Info() *BusinessInfo {
	return &BusinessInfo{
		BusinessName:  b.Name,
		BusinessEmail: b.Email,
		BusinessID:    b.BusinessID,
		Currency:      b.Currency,
		LogoURL:       b.LogoURL,
	}
}

// BusinessInfo is the sanitized business view returned to API callers.
type BusinessInfo struct {
	BusinessName  string `json:"businessName"`
	BusinessEmail string `json:"businessEmail"`
	BusinessID    string `json:"businessId"`
	Currency      string `json:"currency"`
	LogoURL       string `json:"logoUrl"`
}

// BusinessInfoRequest is the payload for POST /business/info.
type BusinessInfoRequest struct {
	BusinessID string `json:"business_id" binding:"required,max=64"`
}
