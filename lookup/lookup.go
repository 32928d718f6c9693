// Package lookup resolves IP addresses against reconciled blocks.
//
// Blocks are converted into CIDRs and stored in a radix tree. Each
// CIDR points to the location of its block, so an address is resolved
// with a single tree search.
package lookup

import (
	"net"
	"sync"

	"github.com/asergeyev/nradix"
	lru "github.com/hashicorp/golang-lru"
	log "github.com/sirupsen/logrus"

	"github.com/9seconds/geoblocks/csvdb"
	"github.com/juju/errors"
)

// DefaultCacheSize is a number of addresses to keep resolved results
// for.
const DefaultCacheSize = 1024

// Result is a location data for the IP address.
type Result struct {
	LocationID string
	Country    string
	Region     string
	City       string
	PostalCode string
	Latitude   string
	Longitude  string
}

// Index is a radix tree of blocks. It is safe to use it concurrently
// after construction.
type Index struct {
	tree  *nradix.Tree
	cache *lru.Cache

	statsMutex sync.Mutex
	lookedUp   uint64
	resolved   uint64
}

// Resolve returns results for addresses which are known to the index.
// Unknown and non-IPv4 addresses are absent from the result.
func (i *Index) Resolve(ips []net.IP) map[string]Result {
	results := make(map[string]Result, len(ips))

	for _, ip := range ips {
		if result := i.resolve(ip); result != nil {
			results[ip.String()] = *result
		}
	}

	i.statsMutex.Lock()
	i.lookedUp += uint64(len(ips))
	i.resolved += uint64(len(results))
	i.statsMutex.Unlock()

	return results
}

func (i *Index) resolve(ip net.IP) *Result {
	v4 := ip.To4()
	if v4 == nil {
		return nil
	}

	stringIP := v4.String()
	if cached, ok := i.cache.Get(stringIP); ok {
		return cached.(*Result)
	}

	var result *Result

	data, err := i.tree.FindCIDR(stringIP + "/32")
	if err != nil {
		log.WithFields(log.Fields{
			"ip":  stringIP,
			"err": err,
		}).Debug("Cannot resolve ip.")
	} else if converted, ok := data.(*Result); ok {
		result = converted
	}

	i.cache.Add(stringIP, result)

	return result
}

// Stats returns a number of addresses looked up and resolved.
func (i *Index) Stats() (uint64, uint64) {
	i.statsMutex.Lock()
	defer i.statsMutex.Unlock()

	return i.lookedUp, i.resolved
}

// NewIndex builds an index from blocks and location table. Placeholder
// blocks and blocks which refer to unknown locations or have incorrect
// ranges are skipped.
func NewIndex(blocks []csvdb.Block, locations []csvdb.Location, placeholder string, cacheSize int) (*Index, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}

	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, errors.Annotate(err, "Cannot create cache")
	}

	results := make(map[string]*Result, len(locations))
	for _, v := range locations {
		results[v.ID] = &Result{
			LocationID: v.ID,
			Country:    v.Country,
			Region:     v.Region,
			City:       v.City,
			PostalCode: v.PostalCode,
			Latitude:   v.Latitude,
			Longitude:  v.Longitude,
		}
	}

	tree := nradix.NewTree(0)

	for _, block := range blocks {
		if block.Classifier == placeholder {
			log.WithFields(log.Fields{
				"block": block.String(),
			}).Debug("Skip placeholder block.")
			continue
		}

		result, ok := results[block.Classifier]
		if !ok {
			log.WithFields(log.Fields{
				"block": block.String(),
			}).Debug("Block refers to unknown location.")
			continue
		}

		subnets, err := block.GetSubnets()
		if err != nil {
			log.WithFields(log.Fields{
				"block": block.String(),
				"err":   err,
			}).Warn("Cannot parse ip range")
			continue
		}

		for _, cidr := range subnets {
			if err := addOrSetCIDR(tree, cidr, result); err != nil {
				return nil, err
			}
		}
	}

	return &Index{
		tree:  tree,
		cache: cache,
	}, nil
}

func addOrSetCIDR(tree *nradix.Tree, cidr string, result *Result) error {
	errAdd := tree.AddCIDR(cidr, result)
	if errAdd == nil {
		return nil
	}

	if errAdd != nradix.ErrNodeBusy {
		return errors.Annotate(errAdd, "Incorrect IP range")
	}

	log.Infof("CIDR %s for location %s already exists. Try to set the new value", cidr, result.LocationID)

	if errSet := tree.SetCIDR(cidr, result); errSet != nil {
		return errors.Annotate(errSet, "Incorrect IP range")
	}

	return nil
}
