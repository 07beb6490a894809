package cli

import (
	"github.com/spf13/viper"

	"mlflow-algorithmia/internal/adapters"
	"mlflow-algorithmia/internal/app"
)

// newAppService builds the service for commands that talk to the
// platform. Missing credentials fail here, before any remote call.
func newAppService() (app.Service, error) {
	settings, err := adapters.NewEnvSettingsAdapter(viper.GetViper()).Load()
	if err != nil {
		return app.Service{}, err
	}
	return app.NewService(settings), nil
}

// newLocalService builds the service for commands that only read local
// files.
func newLocalService() app.Service {
	return app.NewService(adapters.NewEnvSettingsAdapter(viper.GetViper()).LoadLocal())
}
