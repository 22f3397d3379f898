package idgen

import (
	"os"

	"github.com/fundwit/go-commons/types"
	"github.com/sony/sonyflake"
)

// NewWorker falls back to a pid based machine id when no private address is available.
func NewWorker() *sonyflake.Sonyflake {
	w := sonyflake.NewSonyflake(sonyflake.Settings{})
	if w == nil {
		w = sonyflake.NewSonyflake(sonyflake.Settings{MachineID: func() (uint16, error) {
			return uint16(os.Getpid()), nil
		}})
	}
	return w
}

func NextID(idWorker *sonyflake.Sonyflake) types.ID {
	id, err := idWorker.NextID()
	if err != nil {
		panic(err)
	}
	return types.ID(id)
}
