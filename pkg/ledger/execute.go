package ledger

import "aquaswap/pkg/program"

type accountSnapshot struct {
	lamports uint64
	data     []byte
	owner    [32]byte
}

// Execute runs one instruction through the engine with the ledger's
// all-or-nothing guarantee: on any failure every supplied account is
// restored to its pre-instruction state, so no partial side effect
// survives.
func (l *Ledger) Execute(engine *program.Engine, accounts []*program.Account, data []byte) error {
	snapshots := make([]accountSnapshot, len(accounts))
	for i, acc := range accounts {
		snap := accountSnapshot{lamports: acc.Lamports, owner: acc.Owner}
		if acc.Data != nil {
			snap.data = make([]byte, len(acc.Data))
			copy(snap.data, acc.Data)
		}
		snapshots[i] = snap
	}

	if err := engine.Process(accounts, data); err != nil {
		for i, acc := range accounts {
			acc.Lamports = snapshots[i].lamports
			acc.Owner = snapshots[i].owner
			acc.Data = snapshots[i].data
		}
		return err
	}
	return nil
}
