package mongodb

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/jhoicas/Reportes-api/internal/domain"
	"github.com/jhoicas/Reportes-api/internal/domain/entity"
	"github.com/jhoicas/Reportes-api/internal/domain/repository"
)

var _ repository.ProfileRepository = (*ProfileRepo)(nil)

// ProfileRepo guarda las proyecciones de perfil, una colección por rol.
type ProfileRepo struct {
	store *Store
}

// NewProfileRepository construye el adaptador.
func NewProfileRepository(store *Store) *ProfileRepo {
	return &ProfileRepo{store: store}
}

func (r *ProfileRepo) collection(container string) (*mongo.Collection, error) {
	if !slices.Contains(entity.ProfileContainers, container) {
		return nil, fmt.Errorf("contenedor de perfil desconocido: %q", container)
	}
	return r.store.Collection(container), nil
}

// FindByEmail devuelve la proyección normalizada o nil si no existe.
func (r *ProfileRepo) FindByEmail(ctx context.Context, container, email string) (entity.Profile, error) {
	coll, err := r.collection(container)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile %s: %w", container, err)
	}
	return entity.Profile(normalizeMap(doc)), nil
}

// Insert guarda una proyección nueva con su propio ObjectID.
// Devuelve domain.ErrConflict si ya hay una para ese email.
func (r *ProfileRepo) Insert(ctx context.Context, container string, profile entity.Profile) (string, error) {
	coll, err := r.collection(container)
	if err != nil {
		return "", err
	}
	oid := bson.NewObjectID()
	doc := bson.M{}
	for k, v := range profile {
		doc[k] = v
	}
	doc["_id"] = oid
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", domain.ErrConflict
		}
		return "", fmt.Errorf("insert profile %s: %w", container, err)
	}
	return oid.Hex(), nil
}

// UpdateByEmail sobrescribe los campos dados; el _id de la proyección no se toca.
func (r *ProfileRepo) UpdateByEmail(ctx context.Context, container, email string, fields entity.Profile) error {
	coll, err := r.collection(container)
	if err != nil {
		return err
	}
	set := bson.M{}
	for k, v := range fields {
		if k == entity.FieldID {
			continue
		}
		set[k] = v
	}
	if _, err := coll.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": set}); err != nil {
		return fmt.Errorf("update profile %s: %w", container, err)
	}
	return nil
}
