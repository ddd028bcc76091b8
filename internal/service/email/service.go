package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"path/filepath"

	"github.com/resend/resend-go/v3"

	"contract-exchange/internal/config"
)

type Service interface {
	SendEmailVerification(ctx context.Context, toEmail, fullName, verificationToken string) error
	SendPasswordResetEmail(ctx context.Context, toEmail, fullName, resetToken string) error
	SendListingSubmittedEmail(ctx context.Context, toEmail, adminName, ownerName, listingTitle string) error
	SendListingModeratedEmail(ctx context.Context, toEmail, ownerName, listingTitle, status, note string) error
	SendChangeRequestEmail(ctx context.Context, toEmail, adminName, requesterName, requestType, listingTitle string) error
	SendChangeRequestDecidedEmail(ctx context.Context, toEmail, requesterName, requestType, listingTitle, status, adminNote string) error
	SendInquiryEmail(ctx context.Context, toEmail, ownerName, listingTitle string) error
}

type service struct {
	client       *resend.Client
	config       *config.Config
	templatePath string
}

func NewService(cfg *config.Config) Service {
	client := resend.NewClient(cfg.ResendAPIKey)
	templatePath := "internal/service/templates/email"
	return &service{
		client:       client,
		config:       cfg,
		templatePath: templatePath,
	}
}

func (s *service) sendEmail(toEmail, subject, templateName string, data interface{}) error {
	tmpl, err := template.ParseFiles(
		filepath.Join(s.templatePath, "layout.html"),
		filepath.Join(s.templatePath, templateName),
	)
	if err != nil {
		return fmt.Errorf("failed to parse email templates: %w", err)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to execute email template: %w", err)
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("Contract Exchange <%s>", s.config.FromEmail),
		To:      []string{toEmail},
		Html:    body.String(),
		Subject: subject,
	}

	_, err = s.client.Emails.Send(params)
	return err
}

func (s *service) SendEmailVerification(ctx context.Context, toEmail, fullName, verificationToken string) error {
	data := struct {
		Title string
		Name  string
		Link  string
	}{
		Title: "Verify Your Email - Contract Exchange",
		Name:  fullName,
		Link:  fmt.Sprintf("https://%s/verify-email?token=%s", s.config.Domain, verificationToken),
	}
	return s.sendEmail(toEmail, "Verify Your Email - Contract Exchange", "verification.html", data)
}

func (s *service) SendPasswordResetEmail(ctx context.Context, toEmail, fullName, resetToken string) error {
	data := struct {
		Title string
		Name  string
		Link  string
	}{
		Title: "Reset Your Password - Contract Exchange",
		Name:  fullName,
		Link:  fmt.Sprintf("https://%s/reset-password?token=%s", s.config.Domain, resetToken),
	}
	return s.sendEmail(toEmail, "Password Reset Request - Contract Exchange", "reset_password.html", data)
}

func (s *service) SendListingSubmittedEmail(ctx context.Context, toEmail, adminName, ownerName, listingTitle string) error {
	data := struct {
		Title        string
		Name         string
		OwnerName    string
		ListingTitle string
		Link         string
	}{
		Title:        "New Listing Awaiting Review",
		Name:         adminName,
		OwnerName:    ownerName,
		ListingTitle: listingTitle,
		Link:         fmt.Sprintf("https://%s/admin/listings", s.config.Domain),
	}
	return s.sendEmail(toEmail, "New Listing Awaiting Review - Contract Exchange", "listing_submitted.html", data)
}

func (s *service) SendListingModeratedEmail(ctx context.Context, toEmail, ownerName, listingTitle, status, note string) error {
	data := struct {
		Title        string
		Name         string
		ListingTitle string
		Status       string
		Note         string
		Link         string
	}{
		Title:        "Your Listing Was Reviewed",
		Name:         ownerName,
		ListingTitle: listingTitle,
		Status:       status,
		Note:         note,
		Link:         fmt.Sprintf("https://%s/my-listings", s.config.Domain),
	}
	return s.sendEmail(toEmail, "Your Listing Was Reviewed - Contract Exchange", "listing_moderated.html", data)
}

func (s *service) SendChangeRequestEmail(ctx context.Context, toEmail, adminName, requesterName, requestType, listingTitle string) error {
	data := struct {
		Title         string
		Name          string
		RequesterName string
		RequestType   string
		ListingTitle  string
		Link          string
	}{
		Title:         "New Change Request",
		Name:          adminName,
		RequesterName: requesterName,
		RequestType:   requestType,
		ListingTitle:  listingTitle,
		Link:          fmt.Sprintf("https://%s/admin/change-requests", s.config.Domain),
	}
	return s.sendEmail(toEmail, "New Change Request - Contract Exchange", "change_request.html", data)
}

func (s *service) SendChangeRequestDecidedEmail(ctx context.Context, toEmail, requesterName, requestType, listingTitle, status, adminNote string) error {
	data := struct {
		Title        string
		Name         string
		RequestType  string
		ListingTitle string
		Status       string
		AdminNote    string
		Link         string
	}{
		Title:        "Your Request Was Reviewed",
		Name:         requesterName,
		RequestType:  requestType,
		ListingTitle: listingTitle,
		Status:       status,
		AdminNote:    adminNote,
		Link:         fmt.Sprintf("https://%s/my-requests", s.config.Domain),
	}
	return s.sendEmail(toEmail, "Your Request Was Reviewed - Contract Exchange", "change_request_decided.html", data)
}

func (s *service) SendInquiryEmail(ctx context.Context, toEmail, ownerName, listingTitle string) error {
	data := struct {
		Title        string
		Name         string
		ListingTitle string
		Link         string
	}{
		Title:        "New Inquiry on Your Listing",
		Name:         ownerName,
		ListingTitle: listingTitle,
		Link:         fmt.Sprintf("https://%s/my-listings", s.config.Domain),
	}
	return s.sendEmail(toEmail, "New Inquiry on Your Listing - Contract Exchange", "inquiry.html", data)
}
