package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type EmailService struct {
	mock.Mock
}

func (m *EmailService) SendEmailVerification(ctx context.Context, toEmail, fullName, verificationToken string) error {
	args := m.Called(ctx, toEmail, fullName, verificationToken)
	return args.Error(0)
}

func (m *EmailService) SendPasswordResetEmail(ctx context.Context, toEmail, fullName, resetToken string) error {
	args := m.Called(ctx, toEmail, fullName, resetToken)
	return args.Error(0)
}

func (m *EmailService) SendListingSubmittedEmail(ctx context.Context, toEmail, adminName, ownerName, listingTitle string) error {
	args := m.Called(ctx, toEmail, adminName, ownerName, listingTitle)
	return args.Error(0)
}

func (m *EmailService) SendListingModeratedEmail(ctx context.Context, toEmail, ownerName, listingTitle, status, note string) error {
	args := m.Called(ctx, toEmail, ownerName, listingTitle, status, note)
	return args.Error(0)
}

func (m *EmailService) SendChangeRequestEmail(ctx context.Context, toEmail, adminName, requesterName, requestType, listingTitle string) error {
	args := m.Called(ctx, toEmail, adminName, requesterName, requestType, listingTitle)
	return args.Error(0)
}

func (m *EmailService) SendChangeRequestDecidedEmail(ctx context.Context, toEmail, requesterName, requestType, listingTitle, status, adminNote string) error {
	args := m.Called(ctx, toEmail, requesterName, requestType, listingTitle, status, adminNote)
	return args.Error(0)
}

func (m *EmailService) SendInquiryEmail(ctx context.Context, toEmail, ownerName, listingTitle string) error {
	args := m.Called(ctx, toEmail, ownerName, listingTitle)
	return args.Error(0)
}
