package vector

import (
	"context"

	"github.com/weaviate/weaviate/entities/models"
)

// SchemaClient is the subset of Weaviate schema operations needed to
// bootstrap the chunk class.
type SchemaClient interface {
	ClassExists(ctx context.Context, className string) (bool, error)
	CreateClass(ctx context.Context, class *models.Class) error
	GetClass(ctx context.Context, className string) (*models.Class, error)
	AddProperty(ctx context.Context, className string, property *models.Property) error
}

// EnsureSchema creates the BookChunk class if it is missing and adds any
// properties introduced since the class was created. Vectors are supplied
// by the application, so the class vectorizer is "none".
func EnsureSchema(ctx context.Context, client SchemaClient) error {
	className := "BookChunk"
	exists, err := client.ClassExists(ctx, className)
	if err != nil {
		return err
	}

	properties := []*models.Property{
		{
			Name:     "content",
			DataType: []string{"text"},
		},
		{
			Name:     "filename",
			DataType: []string{"string"},
		},
		{
			Name:     "page",
			DataType: []string{"int"},
		},
		{
			Name:     "chunkId",
			DataType: []string{"string"},
		},
		{
			Name:     "chunkIndex",
			DataType: []string{"int"},
		},
	}

	if !exists {
		class := &models.Class{
			Class:       className,
			Description: "A chunk of an ingested PDF page",
			Vectorizer:  "none",
			Properties:  properties,
		}
		return client.CreateClass(ctx, class)
	}

	class, err := client.GetClass(ctx, className)
	if err != nil {
		return err
	}

	existingProps := make(map[string]bool)
	for _, p := range class.Properties {
		existingProps[p.Name] = true
	}

	for _, p := range properties {
		if !existingProps[p.Name] {
			if err := client.AddProperty(ctx, className, p); err != nil {
				return err
			}
		}
	}

	return nil
}
