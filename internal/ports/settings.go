package ports

import "mlflow-algorithmia/internal/types"

type SettingsPort interface {
	Load() (types.Settings, error)
}
