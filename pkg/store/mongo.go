package store

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/blockflow/pkg/block"
	"github.com/matzehuels/blockflow/pkg/errors"
)

const (
	defaultMongoDatabase = "blockflow"
	mongoCollection      = "snapshots"
	mongoConnectTimeout  = 10 * time.Second
)

// MongoStore keeps snapshots in a MongoDB collection, one document per name.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// mongoSnapshot is the stored document. The tree is kept as JSON text so
// payload values round-trip with the same Go types as the other backends.
type mongoSnapshot struct {
	Name      string    `bson:"_id"`
	TreeJSON  string    `bson:"tree_json"`
	AnchorX   float64   `bson:"anchor_x"`
	AnchorY   float64   `bson:"anchor_y"`
	Zoom      float64   `bson:"zoom"`
	Blocks    int       `bson:"blocks"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewMongoStore connects to uri and verifies the server with a ping.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if uri == "" {
		return nil, errors.InvalidArgument("mongo store needs a connection uri")
	}
	if database == "" {
		database = defaultMongoDatabase
	}

	ctx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(mongoCollection),
	}, nil
}

func (s *MongoStore) Save(ctx context.Context, snap *Snapshot) error {
	if err := validate(snap); err != nil {
		return err
	}
	tree, err := json.Marshal(snap.Tree)
	if err != nil {
		return fmt.Errorf("marshal tree: %w", err)
	}
	snap.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

	doc := mongoSnapshot{
		Name:      snap.Name,
		TreeJSON:  string(tree),
		AnchorX:   snap.Anchor.X,
		AnchorY:   snap.Anchor.Y,
		Zoom:      snap.Zoom,
		Blocks:    snap.Tree.Size(),
		UpdatedAt: snap.UpdatedAt,
	}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": snap.Name}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *MongoStore) Load(ctx context.Context, name string) (*Snapshot, error) {
	if err := errors.ValidateName(name); err != nil {
		return nil, err
	}
	var doc mongoSnapshot
	err := s.coll.FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return doc.snapshot()
}

func (doc mongoSnapshot) snapshot() (*Snapshot, error) {
	snap := &Snapshot{
		Name:      doc.Name,
		Tree:      &block.Tree{},
		Zoom:      doc.Zoom,
		UpdatedAt: doc.UpdatedAt.UTC(),
	}
	snap.Anchor.X, snap.Anchor.Y = doc.AnchorX, doc.AnchorY
	if err := json.Unmarshal([]byte(doc.TreeJSON), snap.Tree); err != nil {
		return nil, fmt.Errorf("parse tree: %w", err)
	}
	return snap, nil
}

func (s *MongoStore) List(ctx context.Context) ([]Info, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetProjection(bson.M{"tree_json": 0})
	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	var docs []mongoSnapshot
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	out := make([]Info, len(docs))
	for i, d := range docs {
		out[i] = Info{Name: d.Name, Blocks: d.Blocks, UpdatedAt: d.UpdatedAt.UTC()}
	}
	return out, nil
}

func (s *MongoStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateName(name); err != nil {
		return err
	}
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": name}); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

var _ Store = (*MongoStore)(nil)
