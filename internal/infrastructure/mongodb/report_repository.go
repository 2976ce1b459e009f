package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/jhoicas/Reportes-api/internal/domain/entity"
	"github.com/jhoicas/Reportes-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

type reportDocument struct {
	ID           any       `bson:"_id,omitempty"`
	Email        string    `bson:"email,omitempty"`
	Departamento any       `bson:"departamento"`
	Descripcion  string    `bson:"descripcion"`
	TipoProblema string    `bson:"tipoProblema"`
	QuienReporta string    `bson:"quienReporta"`
	Prioridad    string    `bson:"prioridad"`
	Estado       string    `bson:"estado"`
	Imagenes     any       `bson:"imagenes"`
	Timestamp    time.Time `bson:"timestamp"`
}

// ReportRepo implementación del puerto ReportRepository sobre MongoDB.
type ReportRepo struct {
	coll *mongo.Collection
}

// NewReportRepository construye el adaptador de persistencia para reportes.
func NewReportRepository(store *Store) *ReportRepo {
	return &ReportRepo{coll: store.Collection(CollectionReports)}
}

// Save inserta el reporte con un ObjectID nuevo.
func (r *ReportRepo) Save(ctx context.Context, report *entity.Report) (string, bool, error) {
	oid := bson.NewObjectID()
	doc := toReportDocument(report)
	doc.ID = oid
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return "", false, fmt.Errorf("insert report: %w", err)
	}
	return oid.Hex(), res.Acknowledged, nil
}

// List devuelve todos los reportes ordenados por timestamp descendente.
func (r *ReportRepo) List(ctx context.Context) ([]*entity.Report, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer cur.Close(ctx)
	var docs []reportDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode reports: %w", err)
	}
	out := make([]*entity.Report, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toEntity())
	}
	return out, nil
}

// FindByID busca por ObjectID y luego por string.
func (r *ReportRepo) FindByID(ctx context.Context, id string) (*entity.Report, error) {
	var doc reportDocument
	found, err := firstMatch(ctx, id, func(ctx context.Context, filter bson.M) (bool, error) {
		err := r.coll.FindOne(ctx, filter).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return err == nil, err
	})
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	if !found {
		return nil, nil
	}
	return doc.toEntity(), nil
}

// Update aplica $set con la primera representación de id que coincida.
// Modified es false cuando el documento ya tenía esos valores.
func (r *ReportRepo) Update(ctx context.Context, id string, patch entity.ReportPatch) (entity.UpdateOutcome, error) {
	set := bson.M{}
	for k, v := range patch {
		set[k] = v
	}
	var out entity.UpdateOutcome
	found, err := firstMatch(ctx, id, func(ctx context.Context, filter bson.M) (bool, error) {
		res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": set})
		if err != nil {
			return false, err
		}
		if res.MatchedCount == 0 {
			return false, nil
		}
		out.Modified = res.ModifiedCount > 0
		return true, nil
	})
	if err != nil {
		return entity.UpdateOutcome{}, fmt.Errorf("update report: %w", err)
	}
	out.Matched = found
	return out, nil
}

// Delete elimina con la primera representación de id que coincida.
func (r *ReportRepo) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := firstMatch(ctx, id, func(ctx context.Context, filter bson.M) (bool, error) {
		res, err := r.coll.DeleteOne(ctx, filter)
		if err != nil {
			return false, err
		}
		return res.DeletedCount == 1, nil
	})
	if err != nil {
		return false, fmt.Errorf("delete report: %w", err)
	}
	return deleted, nil
}

func toReportDocument(r *entity.Report) reportDocument {
	return reportDocument{
		Email:        r.Email,
		Departamento: r.Departamento,
		Descripcion:  r.Descripcion,
		TipoProblema: r.TipoProblema,
		QuienReporta: r.QuienReporta,
		Prioridad:    r.Prioridad,
		Estado:       r.Estado,
		Imagenes:     r.Imagenes,
		Timestamp:    r.Timestamp,
	}
}

// toEntity tolera listas guardadas como texto suelto por versiones anteriores.
func (d *reportDocument) toEntity() *entity.Report {
	deps, _ := entity.StringList(normalizeValue(d.Departamento))
	imgs, _ := entity.StringList(normalizeValue(d.Imagenes))
	if imgs == nil {
		imgs = []string{}
	}
	return &entity.Report{
		ID:           idString(d.ID),
		Email:        d.Email,
		Departamento: deps,
		Descripcion:  d.Descripcion,
		TipoProblema: d.TipoProblema,
		QuienReporta: d.QuienReporta,
		Prioridad:    d.Prioridad,
		Estado:       d.Estado,
		Imagenes:     imgs,
		Timestamp:    d.Timestamp.UTC(),
	}
}
