package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// idCandidates devuelve las representaciones de id a probar, en orden:
// ObjectID (si el texto es un hex válido) y luego el string tal cual.
// Hay reportes guardados con cada una de ellas.
func idCandidates(id string) []any {
	candidates := make([]any, 0, 2)
	if oid, err := bson.ObjectIDFromHex(id); err == nil {
		candidates = append(candidates, oid)
	}
	return append(candidates, id)
}

// firstMatch aplica op con un filtro por cada representación hasta que una coincide.
// Solo es "no encontrado" cuando ninguna coincide.
func firstMatch(ctx context.Context, id string, op func(ctx context.Context, filter bson.M) (bool, error)) (bool, error) {
	for _, candidate := range idCandidates(id) {
		found, err := op(ctx, bson.M{"_id": candidate})
		if err != nil {
			return false, err
		}
		if found {
			return true, nil
		}
	}
	return false, nil
}

// idString normaliza un _id almacenado a string.
func idString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case bson.ObjectID:
		return t.Hex()
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
