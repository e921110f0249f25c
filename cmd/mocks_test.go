package cmd

import (
	"github.com/stretchr/testify/mock"

	"github.com/mouse-blink/clientguard/internal/domain"
)

type mockWorkflow struct {
	mock.Mock
}

func (w *mockWorkflow) Run(args domain.RunArgs) error {
	return w.Called(args).Error(0)
}

func (w *mockWorkflow) List(args domain.ListArgs) error {
	return w.Called(args).Error(0)
}

func (w *mockWorkflow) Diff(args domain.DiffArgs) error {
	return w.Called(args).Error(0)
}
