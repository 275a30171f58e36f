package indexer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/setavenger/blindbit-chainstore/internal/logging"
	"github.com/setavenger/blindbit-chainstore/internal/query"
	"golang.org/x/sync/errgroup"
)

// Source is where blocks come from, usually a node over rpc.
type Source interface {
	GetBlockCount(ctx context.Context) (uint32, error)
	GetBlockHashes(ctx context.Context, heights []uint32) ([]*chainhash.Hash, error)
	GetBlock(ctx context.Context, hash *chainhash.Hash) (*wire.MsgBlock, error)
}

var ErrRewind = errors.New("failed to rewind confirmed chain")

type Syncer struct {
	q      *query.Query
	source Source

	batchSize int
	parallel  int
}

func NewSyncer(q *query.Query, source Source, batchSize, parallel int) *Syncer {
	return &Syncer{
		q:         q,
		source:    source,
		batchSize: max(batchSize, 1),
		parallel:  max(parallel, 1),
	}
}

// Sync organizes blocks from the source until the confirmed top is the
// source's tip and returns how many blocks were confirmed. Blocks the source
// no longer has on its chain are disorganized first.
func (s *Syncer) Sync(ctx context.Context) (int, error) {
	if err := s.rewind(ctx); err != nil {
		return 0, err
	}

	var confirmed int
	for {
		count, err := s.source.GetBlockCount(ctx)
		if err != nil {
			return confirmed, err
		}
		top, ok := s.q.GetTopConfirmed()
		if !ok {
			return confirmed, query.Integrity
		}
		if top >= count {
			return confirmed, nil
		}

		heights := make([]uint32, 0, s.batchSize)
		for height := top + 1; height <= count && len(heights) < s.batchSize; height++ {
			heights = append(heights, height)
		}

		blocks, err := s.fetch(ctx, heights)
		if err != nil {
			return confirmed, err
		}

		for i, block := range blocks {
			header, code := s.q.Organize(block)
			switch code {
			case query.Success:
				confirmed++
				s.index(header)
				continue
			case query.Unassociated:
				// the source reorganized while we fetched
				logging.L.Warn().Uint32("height", heights[i]).Msg("block does not extend confirmed top")
				before, _ := s.q.GetTopConfirmed()
				if err = s.rewind(ctx); err != nil {
					return confirmed, err
				}
				if after, _ := s.q.GetTopConfirmed(); after == before {
					return confirmed, fmt.Errorf("block %s at height %d: %w",
						block.BlockHash(), heights[i], code)
				}
			default:
				return confirmed, fmt.Errorf("block %s at height %d: %w",
					block.BlockHash(), heights[i], code)
			}
			break
		}
	}
}

// Run syncs every interval until ctx is done.
func (s *Syncer) Run(ctx context.Context, interval time.Duration) error {
	for {
		n, err := s.Sync(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			top, _ := s.q.GetTopConfirmed()
			logging.L.Info().Int("blocks", n).Uint32("height", top).Msg("synced")
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

// index stores the filter of a newly confirmed block when the neutrino table
// is enabled, a failure leaves it to be built on first request.
func (s *Syncer) index(header query.Link) {
	if s.q.Store().Neutrino == nil {
		return
	}
	if _, ok := s.q.GetFilterHeader(header); !ok {
		logging.L.Warn().Uint32("header", uint32(header)).Msg("failed to store block filter")
	}
}

// fetch pulls the blocks at heights concurrently, results keep the order of heights.
func (s *Syncer) fetch(ctx context.Context, heights []uint32) ([]*wire.MsgBlock, error) {
	hashes, err := s.source.GetBlockHashes(ctx, heights)
	if err != nil {
		return nil, err
	}

	blocks := make([]*wire.MsgBlock, len(hashes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallel)
	for i, hash := range hashes {
		g.Go(func() error {
			block, err := s.source.GetBlock(gctx, hash)
			if err != nil {
				return fmt.Errorf("error pulling block %s: %w", hash, err)
			}
			blocks[i] = block
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, err
	}
	return blocks, nil
}

// rewind disorganizes the confirmed top until it is on the source's chain.
func (s *Syncer) rewind(ctx context.Context) error {
	count, err := s.source.GetBlockCount(ctx)
	if err != nil {
		return err
	}

	for {
		top, ok := s.q.GetTopConfirmed()
		if !ok {
			return query.Integrity
		}
		if top == 0 {
			return nil
		}

		if top <= count {
			theirs, err := s.source.GetBlockHashes(ctx, []uint32{top})
			if err != nil {
				return err
			}
			ours, ok := s.q.GetHeaderHash(s.q.ToConfirmed(top))
			if !ok {
				return query.Integrity
			}
			if ours.IsEqual(theirs[0]) {
				return nil
			}
		}

		if _, ok = s.q.Disorganize(); !ok {
			return ErrRewind
		}
		logging.L.Warn().Uint32("height", top).Msg("rewound confirmed block")
	}
}
