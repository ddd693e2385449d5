// Package catalog holds the read-only lookup tables the bot loads once at
// startup: product descriptors for the auto-message broadcasts and the named
// channel/category IDs everything else resolves against.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var ErrNotFound = errors.New("catalog: not found")

type Product struct {
	Code        string `bson:"_name"`
	Title       string `bson:"name"`
	Description string `bson:"description"`
	ImageURL    string `bson:"image_url"`
	ChannelID   string `bson:"channel"`
}

type channelEntry struct {
	Name      string `bson:"_name"`
	ChannelID string `bson:"channel"`
}

type Catalog struct {
	products map[string]Product
	channels map[string]string
}

// New builds a catalog from in-memory tables. Used by tests and as the empty
// fallback when the document store is unreachable.
func New(products map[string]Product, channels map[string]string) *Catalog {
	if products == nil {
		products = make(map[string]Product)
	}
	if channels == nil {
		channels = make(map[string]string)
	}
	return &Catalog{products: products, channels: channels}
}

// Load reads the product and channel collections from MongoDB. Any failure is
// logged and an empty catalog is returned; lookups then resolve to not-found
// rather than the process refusing to start.
func Load(uri, dbName string) *Catalog {
	c := New(nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		log.Printf("WARNING: [Catalog] connect failed: %v — products and channels will resolve to not-found", err)
		return c
	}
	defer client.Disconnect(ctx)

	if err := client.Ping(ctx, nil); err != nil {
		log.Printf("WARNING: [Catalog] ping failed: %v — products and channels will resolve to not-found", err)
		return c
	}

	db := client.Database(dbName)

	cursor, err := db.Collection("auto-messages").Find(ctx, bson.M{})
	if err != nil {
		log.Printf("WARNING: [Catalog] reading auto-messages failed: %v", err)
	} else {
		var all []Product
		if err := cursor.All(ctx, &all); err != nil {
			log.Printf("WARNING: [Catalog] decoding auto-messages failed: %v", err)
		}
		for _, p := range all {
			c.products[p.Code] = p
		}
	}

	cursor, err = db.Collection("channels").Find(ctx, bson.M{})
	if err != nil {
		log.Printf("WARNING: [Catalog] reading channels failed: %v", err)
	} else {
		var all []channelEntry
		if err := cursor.All(ctx, &all); err != nil {
			log.Printf("WARNING: [Catalog] decoding channels failed: %v", err)
		}
		for _, e := range all {
			c.channels[e.Name] = e.ChannelID
		}
	}

	log.Printf("[Catalog] Loaded %d products, %d channels", len(c.products), len(c.channels))
	return c
}

func (c *Catalog) Product(code string) (Product, error) {
	p, ok := c.products[code]
	if !ok {
		return Product{}, fmt.Errorf("product %q: %w", code, ErrNotFound)
	}
	return p, nil
}

func (c *Catalog) Channel(name string) (string, error) {
	id, ok := c.channels[name]
	if !ok {
		return "", fmt.Errorf("channel %q: %w", name, ErrNotFound)
	}
	return id, nil
}

// ProductCodes returns all known product codes in a stable order.
func (c *Catalog) ProductCodes() []string {
	codes := make([]string, 0, len(c.products))
	for code := range c.products {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
