package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

func init() {
	m.Register(func(app core.App) error {
		categories, err := app.FindCollectionByNameOrId("categories")
		if err != nil {
			return err
		}
		users, err := app.FindCollectionByNameOrId("users")
		if err != nil {
			return err
		}

		collection := core.NewBaseCollection("events")

		collection.Fields.Add(
			&core.TextField{
				Name:     "title",
				Required: true,
				Max:      200,
			},
			&core.TextField{
				Name: "slug",
			},
			&core.EditorField{
				Name: "description",
			},
			&core.RelationField{
				Name:          "category",
				CollectionId:  categories.Id,
				MaxSelect:     1,
				CascadeDelete: false,
			},
			&core.TextField{
				Name: "location",
			},
			&core.DateField{
				Name: "date",
			},
			&core.NumberField{
				Name: "price",
				Min:  types.Pointer(0.0),
			},
			&core.NumberField{
				Name:    "capacity",
				Min:     types.Pointer(0.0),
				OnlyInt: true,
			},
			&core.NumberField{
				Name:    "total_capacity",
				Min:     types.Pointer(0.0),
				OnlyInt: true,
			},
			&core.FileField{
				Name:      "image",
				MaxSelect: 1,
				MaxSize:   5242880,
				MimeTypes: []string{"image/jpeg", "image/png", "image/gif"},
			},
			&core.RelationField{
				Name:          "created_by",
				CollectionId:  users.Id,
				MaxSelect:     1,
				CascadeDelete: false,
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

		collection.AddIndex("idx_events_slug", false, "slug", "")
		collection.AddIndex("idx_events_category", false, "category", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("events")
		if err != nil {
			return nil
		}
		return app.Delete(collection)
	})
}
