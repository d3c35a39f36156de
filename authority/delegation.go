package authority

import "github.com/latticerun/physics/capability"

// isChild reports whether child's parent link is granter -- the basic
// relation spec.md §4.5's delegation/revocation rules are phrased in
// terms of.
func (a *Authority) isChild(granter, child uint32) bool {
	parent, ok := a.dir.Parent(child)
	return ok && parent == granter
}

// isDescendant reports whether target is granter's child, grandchild, or
// any further descendant -- the recursive generalization spec.md's
// original_source-sourced "delegation chains" feature requires: a
// grant made by a grandparent to a grandchild should validate the same
// way a single-hop grant does, by walking target's parent chain back to
// granter.
func (a *Authority) isDescendant(granter, target uint32) bool {
	seen := map[uint32]bool{}
	cur := target
	for {
		parent, ok := a.dir.Parent(cur)
		if !ok {
			return false
		}
		if parent == granter {
			return true
		}
		if seen[parent] {
			return false
		}
		seen[parent] = true
		cur = parent
	}
}

// GrantCapability implements spec.md §4.5's grant_capability(granter,
// target, cap): validates that granter holds meta-grant and cap itself,
// then applies the per-capability delegation restriction, before
// mutating target's granted set and recording an audit entry. Denied
// attempts are audited too, so the log stays a complete record of every
// delegation attempt.
func (a *Authority) GrantCapability(granter, target uint32, cap capability.Capability) Decision {
	granterSet, ok := a.dir.Granted(granter)
	if !ok || !granterSet.Contains(capability.Of(capability.MetaGrant)) || !granterSet.Contains(cap) {
		a.appendAudit(granter, OpDelegate, cap, ResultDenied, "granter lacks meta-grant or the capability being delegated")
		return DecisionDenied
	}

	allowed := false
	switch cap.Kind {
	case capability.MetaGrant:
		allowed = a.isDescendant(granter, target) || a.dir.Priority(granter) > 200
	case capability.SysTerminateActor, capability.MacroUnsafe, capability.MetaSelfModify:
		allowed = a.isDescendant(granter, target)
	default:
		allowed = true
	}

	if !allowed {
		a.appendAudit(granter, OpDelegate, cap, ResultDenied, "delegation restriction for this capability not met")
		return DecisionDenied
	}

	a.mutateGrant(target, cap, true)
	a.appendAudit(granter, OpDelegate, cap, ResultGranted, "")
	a.log.Info("capability delegated", zapActor(granter), zapTarget(target), zapCap(cap))
	return DecisionGranted
}

// RevokeCapability implements spec.md §4.5's revoke_capability(revoker,
// target, cap): self-revocation is always permitted; a meta-grant holder
// may revoke most capabilities from anyone, except that meta-grant
// itself may only be revoked from the revoker's own descendant; a parent
// may revoke any capability from a child.
func (a *Authority) RevokeCapability(revoker, target uint32, cap capability.Capability) Decision {
	if revoker == target {
		a.mutateGrant(target, cap, false)
		a.appendAudit(revoker, OpRevoke, cap, ResultGranted, "self-revocation")
		return DecisionGranted
	}

	revokerSet, _ := a.dir.Granted(revoker)
	holdsMetaGrant := revokerSet.Contains(capability.Of(capability.MetaGrant))

	if holdsMetaGrant {
		if cap.Kind == capability.MetaGrant && !a.isDescendant(revoker, target) {
			a.appendAudit(revoker, OpRevoke, cap, ResultDenied, "meta-grant may only be revoked from a descendant")
			return DecisionDenied
		}
		a.mutateGrant(target, cap, false)
		a.appendAudit(revoker, OpRevoke, cap, ResultGranted, "")
		return DecisionGranted
	}

	if a.isChild(revoker, target) {
		a.mutateGrant(target, cap, false)
		a.appendAudit(revoker, OpRevoke, cap, ResultGranted, "parent revocation")
		return DecisionGranted
	}

	a.appendAudit(revoker, OpRevoke, cap, ResultDenied, "revoker holds neither meta-grant nor a parent link to target")
	return DecisionDenied
}
