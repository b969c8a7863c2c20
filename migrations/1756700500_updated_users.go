package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("users")
		if err != nil {
			return err
		}

		collection.Fields.Add(
			&core.SelectField{
				Name:      "role",
				Values:    []string{"admin", "user"},
				MaxSelect: 1,
			},
			&core.TextField{
				Name:   "reset_otp",
				Hidden: true,
			},
			&core.DateField{
				Name:   "reset_otp_expires",
				Hidden: true,
			},
			&core.TextField{
				Name:   "refresh_token",
				Hidden: true,
			},
		)

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("users")
		if err != nil {
			return nil
		}

		for _, name := range []string{"role", "reset_otp", "reset_otp_expires", "refresh_token"} {
			collection.Fields.RemoveByName(name)
		}

		return app.Save(collection)
	})
}
