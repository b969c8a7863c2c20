package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

func init() {
	m.Register(func(app core.App) error {
		bookings, err := app.FindCollectionByNameOrId("bookings")
		if err != nil {
			return err
		}

		collection := core.NewBaseCollection("payments")

		collection.Fields.Add(
			&core.RelationField{
				Name:          "booking",
				Required:      true,
				CollectionId:  bookings.Id,
				MaxSelect:     1,
				CascadeDelete: false,
			},
			&core.NumberField{
				Name: "amount",
				Min:  types.Pointer(0.0),
			},
			&core.TextField{
				Name: "method",
			},
			&core.SelectField{
				Name:      "status",
				Values:    []string{"completed", "failed"},
				MaxSelect: 1,
			},
			&core.TextField{
				Name: "tx_ref",
			},
			&core.AutodateField{
				Name:     "created",
				OnCreate: true,
			},
			&core.AutodateField{
				Name:     "updated",
				OnCreate: true,
				OnUpdate: true,
			},
		)

		// One payment per booking in practice; the unique index makes it
		// schema-enforced.
		collection.AddIndex("idx_payments_booking", true, "booking", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("payments")
		if err != nil {
			return nil
		}
		return app.Delete(collection)
	})
}
