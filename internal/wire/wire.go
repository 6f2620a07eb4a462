//go:build wireinject
// +build wireinject

package wire

import (
	"context"

	"github.com/google/wire"

	"github.com/sevigo/code-council/internal/app"
)

func InitializeApp(ctx context.Context) (*app.App, func(), error) {
	wire.Build(AppSet)
	return &app.App{}, nil, nil
}

func InitializeCouncil(ctx context.Context) (*app.Council, func(), error) {
	wire.Build(CouncilSet)
	return &app.Council{}, nil, nil
}
