package service

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/smallbiznis/pixelift/internal/removal/domain"
	userdomain "github.com/smallbiznis/pixelift/internal/user/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRemover struct {
	calls       int
	image       []byte
	contentType string
	err         error
}

func (f *fakeRemover) RemoveBackground(ctx context.Context, fileName string, image []byte) ([]byte, string, error) {
	f.calls++
	if f.err != nil {
		return nil, "", f.err
	}
	return f.image, f.contentType, nil
}

type fakeUserService struct {
	balance     int64
	debits      int
	failOnDebit error
}

func (f *fakeUserService) Create(ctx context.Context, req userdomain.CreateUserRequest) (userdomain.User, error) {
	return userdomain.User{}, nil
}

func (f *fakeUserService) UpdateProfile(ctx context.Context, req userdomain.UpdateProfileRequest) error {
	return nil
}

func (f *fakeUserService) Delete(ctx context.Context, clerkID string) error { return nil }

func (f *fakeUserService) GetByClerkID(ctx context.Context, clerkID string) (userdomain.User, error) {
	return userdomain.User{ClerkID: clerkID, CreditBalance: f.balance}, nil
}

func (f *fakeUserService) Credits(ctx context.Context, clerkID string) (int64, error) {
	return f.balance, nil
}

func (f *fakeUserService) AddCredits(ctx context.Context, clerkID string, credits int64) error {
	f.balance += credits
	return nil
}

func (f *fakeUserService) DebitCredit(ctx context.Context, clerkID string) error {
	if f.failOnDebit != nil {
		return f.failOnDebit
	}
	if f.balance <= 0 {
		return userdomain.ErrInsufficientCredits
	}
	f.balance--
	f.debits++
	return nil
}

func newTestService(remover Remover, users userdomain.Service) domain.Service {
	return New(Params{
		Log:     zap.NewNop(),
		Remover: remover,
		UserSvc: users,
	})
}

func TestRemoveBackgroundDebitsAfterSuccess(t *testing.T) {
	remover := &fakeRemover{image: []byte{1, 2, 3}, contentType: "image/png"}
	users := &fakeUserService{balance: 5}
	svc := newTestService(remover, users)

	result, err := svc.RemoveBackground(context.Background(), domain.RemoveBackgroundRequest{
		ClerkID:  "user_1",
		FileName: "photo.jpg",
		Image:    []byte("raw"),
	})
	require.NoError(t, err)

	expected := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte{1, 2, 3})
	assert.Equal(t, expected, result.ResultImage)
	assert.EqualValues(t, 4, result.Balance)
	assert.Equal(t, 1, users.debits)
	assert.Equal(t, 1, remover.calls)
}

func TestRemoveBackgroundRefusesWithoutCredits(t *testing.T) {
	remover := &fakeRemover{image: []byte{1}}
	users := &fakeUserService{balance: 0}
	svc := newTestService(remover, users)

	result, err := svc.RemoveBackground(context.Background(), domain.RemoveBackgroundRequest{
		ClerkID: "user_1",
		Image:   []byte("raw"),
	})
	assert.ErrorIs(t, err, userdomain.ErrInsufficientCredits)
	assert.EqualValues(t, 0, result.Balance)

	// The upstream API must never be called for an out-of-credit user.
	assert.Equal(t, 0, remover.calls)
}

func TestRemoveBackgroundKeepsCreditOnUpstreamFailure(t *testing.T) {
	remover := &fakeRemover{err: errors.New("boom")}
	users := &fakeUserService{balance: 3}
	svc := newTestService(remover, users)

	_, err := svc.RemoveBackground(context.Background(), domain.RemoveBackgroundRequest{
		ClerkID: "user_1",
		Image:   []byte("raw"),
	})
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.EqualValues(t, 3, users.balance)
	assert.Equal(t, 0, users.debits)
}

func TestRemoveBackgroundPassesConfigurationErrorThrough(t *testing.T) {
	remover := &fakeRemover{err: domain.ErrNotConfigured}
	users := &fakeUserService{balance: 3}
	svc := newTestService(remover, users)

	_, err := svc.RemoveBackground(context.Background(), domain.RemoveBackgroundRequest{
		ClerkID: "user_1",
		Image:   []byte("raw"),
	})
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
	assert.NotErrorIs(t, err, domain.ErrUpstream)
	assert.Equal(t, 0, users.debits)
}

func TestRemoveBackgroundRejectsEmptyImage(t *testing.T) {
	remover := &fakeRemover{}
	users := &fakeUserService{balance: 3}
	svc := newTestService(remover, users)

	_, err := svc.RemoveBackground(context.Background(), domain.RemoveBackgroundRequest{
		ClerkID: "user_1",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidImage)
	assert.Equal(t, 0, remover.calls)
}

func TestRemoveBackgroundSurfacesDebitRace(t *testing.T) {
	remover := &fakeRemover{image: []byte{1}}
	users := &fakeUserService{balance: 1, failOnDebit: userdomain.ErrInsufficientCredits}
	svc := newTestService(remover, users)

	_, err := svc.RemoveBackground(context.Background(), domain.RemoveBackgroundRequest{
		ClerkID: "user_1",
		Image:   []byte("raw"),
	})
	assert.ErrorIs(t, err, userdomain.ErrInsufficientCredits)
}

func TestRemoveBackgroundDefaultsContentType(t *testing.T) {
	remover := &fakeRemover{image: []byte{9}}
	users := &fakeUserService{balance: 2}
	svc := newTestService(remover, users)

	result, err := svc.RemoveBackground(context.Background(), domain.RemoveBackgroundRequest{
		ClerkID: "user_1",
		Image:   []byte("raw"),
	})
	require.NoError(t, err)
	assert.Contains(t, result.ResultImage, "data:image/png;base64,")
}
