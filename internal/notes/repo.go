package notes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"autonotes/internal/db"
	"autonotes/internal/health"
)

const (
	DefaultDatabase   = "autonotes"
	DefaultCollection = "notes"
)

// noteDoc is the stored shape of a Note: the public fields plus _id.
type noteDoc struct {
	ID   primitive.ObjectID `bson:"_id,omitempty"`
	Note `bson:",inline"`
}

func (d *noteDoc) toNote() *Note {
	n := d.Note
	n.ID = d.ID.Hex()
	n.normalize()
	return &n
}

// Repo stores notes in MongoDB. The client is created on first use (or by
// Open) and shared by all requests until Close.
type Repo struct {
	uri      string
	dbName   string
	collName string

	mu     sync.Mutex
	client *mongo.Client
	coll   *mongo.Collection
}

func NewRepo(uri, database, collection string) *Repo {
	if database == "" {
		database = DefaultDatabase
	}
	if collection == "" {
		collection = DefaultCollection
	}
	return &Repo{uri: uri, dbName: database, collName: collection}
}

// Open connects eagerly. Calling it is optional.
func (r *Repo) Open(ctx context.Context) error {
	_, err := r.connect(ctx)
	return err
}

// Close disconnects the shared client, if any.
func (r *Repo) Close(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client == nil {
		return nil
	}
	err := r.client.Disconnect(ctx)
	r.client, r.coll = nil, nil
	if err != nil {
		return storageErr("disconnect mongo", err)
	}
	return nil
}

func (r *Repo) connect(ctx context.Context) (*mongo.Collection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.coll != nil {
		return r.coll, nil
	}
	if r.uri == "" {
		return nil, storageErr("MONGO_URI not configured", errUnconfigured)
	}

	client, err := db.Connect(ctx, r.uri)
	if err != nil {
		return nil, storageErr("Failed to connect to MongoDB", err)
	}
	r.client = client
	r.coll = client.Database(r.dbName).Collection(r.collName)
	return r.coll, nil
}

// EnsureIndexes creates the index backing newest-first listing
func (r *Repo) EnsureIndexes(ctx context.Context) error {
	coll, err := r.connect(ctx)
	if err != nil {
		return err
	}

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}

	_, err = coll.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

// Insert writes a new note and returns its store-assigned ID
func (r *Repo) Insert(ctx context.Context, n *Note) (string, error) {
	coll, err := r.connect(ctx)
	if err != nil {
		return "", err
	}

	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	res, err := coll.InsertOne(ctx, noteDoc{Note: *n})
	if mongo.IsDuplicateKeyError(err) {
		return "", storageErr("Duplicate note entry detected", err)
	}
	if err != nil {
		return "", storageErr("Database error while saving note", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok || oid.IsZero() {
		return "", storageErr("Failed to insert note: no ID returned", nil)
	}
	return oid.Hex(), nil
}

// GetByID retrieves a note by its ID
func (r *Repo) GetByID(ctx context.Context, id string) (*Note, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, invalidID(id)
	}

	coll, err := r.connect(ctx)
	if err != nil {
		return nil, err
	}

	var doc noteDoc
	err = coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, storageErr("Database error while retrieving note", err)
	}
	return doc.toNote(), nil
}

// List returns notes newest first, applying skip then limit as given
func (r *Repo) List(ctx context.Context, limit, skip int) ([]*Note, error) {
	coll, err := r.connect(ctx)
	if err != nil {
		return nil, err
	}

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(int64(skip)).
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, storageErr("Database error while retrieving notes", err)
	}
	defer cursor.Close(ctx)

	var docs []noteDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, storageErr("decode notes", err)
	}

	out := make([]*Note, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toNote())
	}
	return out, nil
}

// Delete removes a note by ID and reports whether one was removed
func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, invalidID(id)
	}

	coll, err := r.connect(ctx)
	if err != nil {
		return false, err
	}

	result, err := coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, storageErr("Database error while deleting note", err)
	}
	return result.DeletedCount > 0, nil
}

// Ping pings the server and classifies the outcome.
func (r *Repo) Ping(ctx context.Context) health.Status {
	coll, err := r.connect(ctx)
	if err != nil {
		if errors.Is(err, errUnconfigured) {
			return health.Fail(health.StateUnconfigured, err.Error())
		}
		if isAuthError(err) {
			return health.Fail(health.StateUnauthenticated, err.Error())
		}
		return health.Fail(health.StateUnreachable, err.Error())
	}

	err = coll.Database().Client().Ping(ctx, nil)
	switch {
	case err == nil:
		return health.OK()
	case isAuthError(err):
		return health.Fail(health.StateUnauthenticated, err.Error())
	case mongo.IsNetworkError(err), mongo.IsTimeout(err), errors.Is(err, mongo.ErrClientDisconnected):
		return health.Fail(health.StateUnreachable, err.Error())
	}
	return health.Fail(health.StateUnhealthy, err.Error())
}

// isAuthError matches Unauthorized (13) and AuthenticationFailed (18), plus
// handshake failures the driver reports as plain errors.
func isAuthError(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && (cmdErr.Code == 13 || cmdErr.Code == 18) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "authentication failed")
}
