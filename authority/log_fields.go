package authority

import (
	"go.uber.org/zap"

	"github.com/latticerun/physics/capability"
)

func zapActor(id uint32) zap.Field { return zap.Uint32("actor_id", id) }
func zapCap(c capability.Capability) zap.Field { return zap.String("capability", c.String()) }
func zapTarget(id uint32) zap.Field { return zap.Uint32("target_actor_id", id) }
