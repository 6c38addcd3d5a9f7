package ledger

import (
	"context"
	"encoding/hex"
	"math/big"
	"sync"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/errors"
	"github.com/iov-one/timevault/gconf"
	"github.com/iov-one/timevault/store"
	"github.com/tendermint/tendermint/libs/log"
)

// rentConfigPkg is the gconf package name the rent configuration is saved
// under.
const rentConfigPkg = "rent"

// Ledger keeps accounts and executes instructions against them.
type Ledger struct {
	// mu guards all access to the state.
	mu        sync.Mutex
	committed store.CommitKVStore
	state     store.KVCacheWrap

	locks  *keyLocks
	clock  Clock
	logger log.Logger

	pmu      sync.RWMutex
	programs map[timevault.Address]Program
}

// New returns a ledger working on top of given committed state. Changes
// are kept in memory until Commit is called.
func New(committed store.CommitKVStore, clock Clock, logger log.Logger) *Ledger {
	if logger == nil {
		logger = timevault.DefaultLogger
	}
	return &Ledger{
		committed: committed,
		state:     committed.CacheWrap(),
		locks:     newKeyLocks(),
		clock:     clock,
		logger:    logger,
		programs:  make(map[timevault.Address]Program),
	}
}

// Register makes the program callable at given address.
func (l *Ledger) Register(id timevault.Address, p Program) {
	l.pmu.Lock()
	defer l.pmu.Unlock()
	l.programs[id] = p
}

func (l *Ledger) program(id timevault.Address) (Program, error) {
	l.pmu.RLock()
	defer l.pmu.RUnlock()
	p, ok := l.programs[id]
	if !ok {
		return nil, errors.Wrapf(errors.ErrUnknownProgram, "%s", id)
	}
	return p, nil
}

// Clock returns the clock used by this ledger.
func (l *Ledger) Clock() Clock {
	return l.clock
}

// Account returns a copy of the account state. Unknown addresses return
// an empty account owned by the system program.
func (l *Ledger) Account(addr timevault.Address) (*Account, error) {
	release := l.locks.acquire(map[timevault.Address]bool{addr: false})
	defer release()

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadAccount(addr)
}

// SetAccount overwrites the account state. It is meant for genesis and
// administrative tasks, programs modify accounts through instructions.
func (l *Ledger) SetAccount(addr timevault.Address, acc *Account) error {
	release := l.locks.acquire(map[timevault.Address]bool{addr: true})
	defer release()

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.saveAccount(l.state, addr, acc)
}

// Airdrop credits given account with new lamports.
func (l *Ledger) Airdrop(addr timevault.Address, lamports uint64) error {
	release := l.locks.acquire(map[timevault.Address]bool{addr: true})
	defer release()

	l.mu.Lock()
	defer l.mu.Unlock()
	acc, err := l.loadAccount(addr)
	if err != nil {
		return err
	}
	if err := NewAccountInfo(addr, false, true, acc).AddLamports(lamports); err != nil {
		return err
	}
	return l.saveAccount(l.state, addr, acc)
}

// ForEachAccount calls fn for every account with any state, in address
// order.
func (l *Ledger) ForEachAccount(fn func(timevault.Address, *Account) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	prefix := []byte(accountPrefix)
	it, err := l.state.Iterator(prefix, store.PrefixEnd(prefix))
	if err != nil {
		return err
	}
	defer it.Close()
	for it.Valid() {
		addr, err := timevault.NewAddress(it.Key()[len(prefix):])
		if err != nil {
			return errors.Wrap(errors.ErrDatabase, err.Error())
		}
		var acc Account
		if err := acc.Unmarshal(it.Value()); err != nil {
			return errors.Wrapf(err, "account %s", addr)
		}
		if err := fn(addr, &acc); err != nil {
			return err
		}
		if err := it.Next(); err != nil {
			return err
		}
	}
	return nil
}

// Rent returns the rent configuration in force.
func (l *Ledger) Rent() (timevault.Rent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadRent()
}

// SetRent validates and stores a new rent configuration.
func (l *Ledger) SetRent(r timevault.Rent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return gconf.Save(l.state, rentConfigPkg, r)
}

func (l *Ledger) loadRent() (timevault.Rent, error) {
	var r timevault.Rent
	switch err := gconf.Load(l.state, rentConfigPkg, &r); {
	case err == nil:
		return r, nil
	case errors.ErrNotFound.Is(err):
		return timevault.DefaultRent(), nil
	default:
		return r, err
	}
}

// Process executes instructions atomically. Signer flags of the account
// metas are trusted, use Submit to execute a signed transaction.
func (l *Ledger) Process(ctx context.Context, ixs ...Instruction) error {
	if len(ixs) == 0 {
		return errors.Wrap(errors.ErrInput, "no instructions")
	}
	return l.execute(ctx, ixs)
}

// Submit verifies the signatures of the transaction and executes all its
// instructions atomically.
func (l *Ledger) Submit(ctx context.Context, tx *Transaction) error {
	if err := tx.verify(); err != nil {
		return err
	}
	return l.execute(ctx, tx.Instructions)
}

// Commit writes all changes to the committed store and starts a new
// version.
func (l *Ledger) Commit() (store.CommitID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.state.Write(); err != nil {
		return store.CommitID{}, errors.Wrap(err, "write state")
	}
	id, err := l.committed.Commit()
	if err != nil {
		return id, errors.Wrap(err, "commit")
	}
	l.state = l.committed.CacheWrap()
	l.logger.Info("commit", "version", id.Version, "hash", hex.EncodeToString(id.Hash))
	return id, nil
}

func (l *Ledger) execute(ctx context.Context, ixs []Instruction) error {
	writable := make(map[timevault.Address]bool)
	for _, ix := range ixs {
		for _, m := range ix.Accounts {
			writable[m.Address] = writable[m.Address] || m.IsWritable
		}
	}
	release := l.locks.acquire(writable)
	defer release()

	accounts, rent, err := l.load(writable)
	if err != nil {
		return err
	}

	ctx = timevault.WithLogger(ctx, l.logger)
	ctx = timevault.WithNow(ctx, l.clock.Now())
	ctx = timevault.WithRent(ctx, rent)
	for i, ix := range ixs {
		if err := l.invoke(ctx, ix, accounts); err != nil {
			return errors.Wrapf(err, "instruction %d", i)
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	cache := l.state.CacheWrap()
	for addr, acc := range accounts {
		if !writable[addr] {
			continue
		}
		if err := l.saveAccount(cache, addr, acc); err != nil {
			cache.Discard()
			return err
		}
	}
	return cache.Write()
}

func (l *Ledger) load(keys map[timevault.Address]bool) (map[timevault.Address]*Account, timevault.Rent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rent, err := l.loadRent()
	if err != nil {
		return nil, rent, err
	}
	accounts := make(map[timevault.Address]*Account, len(keys))
	for addr := range keys {
		acc, err := l.loadAccount(addr)
		if err != nil {
			return nil, rent, err
		}
		accounts[addr] = acc
	}
	return accounts, rent, nil
}

// invoke runs a single instruction and verifies that it did not modify
// read-only accounts and that no lamports were created or destroyed.
func (l *Ledger) invoke(ctx context.Context, ix Instruction, accounts map[timevault.Address]*Account) error {
	p, err := l.program(ix.ProgramID)
	if err != nil {
		return err
	}

	signer := make(map[timevault.Address]bool)
	writable := make(map[timevault.Address]bool)
	for _, m := range ix.Accounts {
		signer[m.Address] = signer[m.Address] || m.IsSigner
		writable[m.Address] = writable[m.Address] || m.IsWritable
	}
	before := make(map[timevault.Address]*Account, len(writable))
	for addr := range writable {
		before[addr] = accounts[addr].Clone()
	}
	infos := make([]*AccountInfo, len(ix.Accounts))
	for i, m := range ix.Accounts {
		infos[i] = NewAccountInfo(m.Address, signer[m.Address], writable[m.Address], accounts[m.Address])
	}

	ctx = timevault.WithProgramID(ctx, ix.ProgramID)
	ctx = timevault.WithLogInfo(ctx, "program", ix.ProgramID.String())
	if err := p.Process(ctx, infos, ix.Data); err != nil {
		return err
	}

	sumBefore, sumAfter := new(big.Int), new(big.Int)
	for addr, prev := range before {
		cur := accounts[addr]
		if !writable[addr] && !cur.Equals(prev) {
			return errors.Wrapf(errors.ErrReadonlyModified, "account %s", addr)
		}
		sumBefore.Add(sumBefore, new(big.Int).SetUint64(prev.Lamports))
		sumAfter.Add(sumAfter, new(big.Int).SetUint64(cur.Lamports))
	}
	if sumBefore.Cmp(sumAfter) != 0 {
		return errors.Wrapf(errors.ErrUnbalanced, "before %s, after %s", sumBefore, sumAfter)
	}
	return nil
}

func (l *Ledger) loadAccount(addr timevault.Address) (*Account, error) {
	raw, err := l.state.Get(accountKey(addr))
	if err != nil {
		return nil, errors.Wrap(err, "load account")
	}
	var acc Account
	if raw == nil {
		return &acc, nil
	}
	if err := acc.Unmarshal(raw); err != nil {
		return nil, errors.Wrapf(err, "account %s", addr)
	}
	return &acc, nil
}

// saveAccount writes the account state. Empty accounts are removed.
func (l *Ledger) saveAccount(db store.KVStore, addr timevault.Address, acc *Account) error {
	if acc.IsEmpty() {
		return db.Delete(accountKey(addr))
	}
	raw, err := acc.Marshal()
	if err != nil {
		return err
	}
	return db.Set(accountKey(addr), raw)
}
