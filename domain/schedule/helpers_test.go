package schedule_test

import "github.com/fundwit/go-commons/types"

func typesID(id uint64) types.ID {
	return types.ID(id)
}
