package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/hsnesn/staffrota/internal/config"
	"github.com/hsnesn/staffrota/pkg/core/services"
	"github.com/hsnesn/staffrota/pkg/db"
	"github.com/hsnesn/staffrota/pkg/notify"
)

// AppContext holds the application dependencies shared across all commands.
type AppContext struct {
	Cfg        *config.Config
	Database   db.Database
	Dispatcher *notify.Dispatcher
	Logger     *zap.Logger
	Ctx        context.Context

	// Caller is resolved from the --as-user / --as-role flags.
	Caller services.Caller

	// Department and Program come from the persistent scope flags.
	Department string
	Program    string
}

// Scope builds the scope key from the persistent flags.
func (a *AppContext) Scope() db.ScopeKey {
	return db.ScopeKey{DepartmentID: a.Department, ProgramID: a.Program}
}
