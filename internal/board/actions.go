package board

import (
	"context"
	"errors"
)

// ErrNoEngineerSelected is returned when Assign runs without a selection;
// it is rejected locally and no request is sent.
var ErrNoEngineerSelected = errors.New("no engineer selected")

// ErrBusy is returned when a mutation targets an entity that already has
// one in flight. The pending flag is advisory: controls are expected to be
// disabled while busy, this is the backstop.
var ErrBusy = errors.New("mutation already pending for target")

// Assign hands the order to the engineer previously chosen with
// SelectEngineer. On success the returned order is merged into the local
// list; on failure the list is left exactly as it was.
func (b *Board) Assign(ctx context.Context, erpNumber int64) error {
	engineerID, ok := b.selected[erpNumber]
	if !ok || engineerID == 0 {
		b.itemMsgs[erpNumber] = "⚠️ Выберите СИ перед назначением"
		return ErrNoEngineerSelected
	}
	key := orderKey(erpNumber)
	if b.pending[key] {
		return ErrBusy
	}
	b.pending[key] = true
	defer delete(b.pending, key)

	updated, err := b.backend.AssignOrder(ctx, erpNumber, engineerID)
	if err != nil {
		b.itemMsgs[erpNumber] = "❌ Ошибка при назначении."
		b.Notifier.Publish(false, "❌ Ошибка при назначении", b.now())
		return err
	}
	b.mergeOrder(updated)
	delete(b.selected, erpNumber)
	b.itemMsgs[erpNumber] = "⏳ Назначено. Ждёт подтверждения инженером."
	b.Notifier.Publish(true, "✅ Заказ успешно назначен", b.now())
	return nil
}

// Unassign returns the order to the dispatch pool.
func (b *Board) Unassign(ctx context.Context, erpNumber int64) error {
	key := orderKey(erpNumber)
	if b.pending[key] {
		return ErrBusy
	}
	b.pending[key] = true
	defer delete(b.pending, key)

	updated, err := b.backend.UnassignOrder(ctx, erpNumber)
	if err != nil {
		b.itemMsgs[erpNumber] = "❌ Ошибка при снятии назначения."
		b.Notifier.Publish(false, "❌ Ошибка при снятии назначения", b.now())
		return err
	}
	b.mergeOrder(updated)
	b.itemMsgs[erpNumber] = "↩️ Заказ возвращён в пул."
	b.Notifier.Publish(true, "✅ Назначение снято", b.now())
	return nil
}

// Cancel marks the order canceled by the client.
func (b *Board) Cancel(ctx context.Context, erpNumber int64) error {
	key := orderKey(erpNumber)
	if b.pending[key] {
		return ErrBusy
	}
	b.pending[key] = true
	defer delete(b.pending, key)

	updated, err := b.backend.CancelOrder(ctx, erpNumber)
	if err != nil {
		b.itemMsgs[erpNumber] = "❌ Ошибка при отмене."
		b.Notifier.Publish(false, "❌ Ошибка при отмене", b.now())
		return err
	}
	b.mergeOrder(updated)
	b.itemMsgs[erpNumber] = "✅ Заказ отменён клиентом."
	b.Notifier.Publish(true, "✅ Заказ отменён клиентом", b.now())
	return nil
}

// Approve clears an engineer for assignments.
func (b *Board) Approve(ctx context.Context, engineerID int64) error {
	key := engineerKey(engineerID)
	if b.pending[key] {
		return ErrBusy
	}
	b.pending[key] = true
	defer delete(b.pending, key)

	updated, err := b.backend.ApproveEngineer(ctx, engineerID)
	if err != nil {
		b.Notifier.Publish(false, "❌ Ошибка при активации инженера", b.now())
		return err
	}
	b.mergeEngineer(updated)
	b.Notifier.Publish(true, "✅ Инженер активирован", b.now())
	return nil
}

// ToggleWorking flips an engineer's on-duty flag for the day.
func (b *Board) ToggleWorking(ctx context.Context, engineerID int64) error {
	key := engineerKey(engineerID)
	if b.pending[key] {
		return ErrBusy
	}
	b.pending[key] = true
	defer delete(b.pending, key)

	updated, err := b.backend.ToggleWorking(ctx, engineerID)
	if err != nil {
		b.Notifier.Publish(false, "❌ Ошибка при смене статуса смены", b.now())
		return err
	}
	b.mergeEngineer(updated)
	if updated.IsWorking {
		b.Notifier.Publish(true, "✅ Инженер на смене", b.now())
	} else {
		b.Notifier.Publish(true, "✅ Инженер снят со смены", b.now())
	}
	return nil
}
