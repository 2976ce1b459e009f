package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/jhoicas/Reportes-api/internal/domain"
	"github.com/jhoicas/Reportes-api/internal/domain/entity"
	"github.com/jhoicas/Reportes-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// userDocument forma del registro canónico en la colección usuarios.
// Los campos libres del perfil quedan en Campos (inline).
type userDocument struct {
	ID                 any        `bson:"_id,omitempty"`
	Nombre             string     `bson:"nombre"`
	Email              string     `bson:"email"`
	PasswordHash       string     `bson:"passwordHash"`
	Rol                string     `bson:"rol"`
	FechaRegistro      time.Time  `bson:"fechaRegistro"`
	FechaActualizacion *time.Time `bson:"fechaActualizacion,omitempty"`
	Campos             bson.M     `bson:",inline"`
}

// UserRepo implementación del puerto UserRepository sobre MongoDB.
type UserRepo struct {
	coll *mongo.Collection
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(store *Store) *UserRepo {
	return &UserRepo{coll: store.Collection(CollectionUsers)}
}

// Create persiste un nuevo usuario con ObjectID generado.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	oid := bson.NewObjectID()
	doc := toUserDocument(user)
	doc.ID = oid
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	user.ID = oid.Hex()
	return nil
}

// FindByEmail obtiene un usuario por email.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var doc userDocument
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return doc.toEntity(), nil
}

// UpdateFields aplica $set sobre el usuario con ese email.
func (r *UserRepo) UpdateFields(ctx context.Context, email string, fields map[string]any) (bool, error) {
	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("update user: %w", err)
	}
	return res.MatchedCount > 0, nil
}

// List devuelve todos los usuarios por fecha de registro.
func (r *UserRepo) List(ctx context.Context) ([]*entity.User, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "fechaRegistro", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)
	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	out := make([]*entity.User, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toEntity())
	}
	return out, nil
}

func toUserDocument(u *entity.User) userDocument {
	campos := bson.M{}
	for k, v := range u.Campos {
		switch k {
		case entity.FieldID, entity.FieldNombre, entity.FieldEmail, entity.FieldPassword,
			entity.FieldPasswordHash, entity.FieldRol, entity.FieldFechaRegistro, entity.FieldFechaActualizacion:
			continue // ya tienen campo propio; duplicarlos rompe el inline
		}
		campos[k] = v
	}
	return userDocument{
		Nombre:             u.Nombre,
		Email:              u.Email,
		PasswordHash:       u.PasswordHash,
		Rol:                u.Rol,
		FechaRegistro:      u.FechaRegistro,
		FechaActualizacion: u.FechaActualizacion,
		Campos:             campos,
	}
}

func (d *userDocument) toEntity() *entity.User {
	campos := normalizeMap(d.Campos)
	hash := d.PasswordHash
	// registros antiguos guardaban el hash en "password"
	if legacy, ok := campos[entity.FieldPassword].(string); ok {
		if hash == "" {
			hash = legacy
		}
		delete(campos, entity.FieldPassword)
	}
	u := &entity.User{
		ID:            idString(d.ID),
		Nombre:        d.Nombre,
		Email:         d.Email,
		PasswordHash:  hash,
		Rol:           d.Rol,
		FechaRegistro: d.FechaRegistro.UTC(),
		Campos:        campos,
	}
	if d.FechaActualizacion != nil {
		t := d.FechaActualizacion.UTC()
		u.FechaActualizacion = &t
	}
	return u
}
