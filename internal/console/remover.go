package console

import (
	"context"

	"go.uber.org/zap"

	"github.com/Spok95/gradebook-bot/internal/gateway"
	"github.com/Spok95/gradebook-bot/internal/models"
	"github.com/Spok95/gradebook-bot/internal/view"
)

const keyDeleteList = "list:delete"

// DeleteKind: вид сущности на странице удаления (0, если ещё не выбран).
func (c *Console) DeleteKind() models.Kind {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st.Delete.Kind
}

// SelectDeleteKind сбрасывает выбор, прячет подтверждение и загружает сокращённый список.
func (c *Console) SelectDeleteKind(ctx context.Context, kind models.Kind) {
	if !kind.Valid() {
		kind = models.KindRecord
	}
	c.mu.Lock()
	c.st.Delete = DeleteState{Kind: kind}
	c.ui.ShowDeleteConfirm(nil)
	c.mu.Unlock()
	c.reloadDeleteList(ctx, kind)
}

// SelectDeleteRow подсвечивает ровно одну строку и показывает подтверждение,
// привязанное к её id и текущему виду сущности.
func (c *Console) SelectDeleteRow(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.st.Delete.Kind.Valid() || !hasRow(c.st.Delete.Table, id) {
		return false
	}
	c.st.Delete.Table = c.st.Delete.Table.Select(id)
	c.st.Delete.Confirm = &DeleteConfirm{Kind: c.st.Delete.Kind, ID: id}
	c.ui.ShowTable(TargetDeleteList, c.st.Delete.Table)
	confirm := *c.st.Delete.Confirm
	c.ui.ShowDeleteConfirm(&confirm)
	return true
}

// ConfirmDelete удаляет выбранную сущность. При ошибке список не перечитывается.
func (c *Console) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	if c.st.Delete.Confirm == nil {
		c.mu.Unlock()
		return nil
	}
	target := *c.st.Delete.Confirm
	c.mu.Unlock()

	if err := c.gw.Delete(ctx, target.Kind, target.ID); err != nil {
		c.log.Warn("delete failed", zap.Stringer("kind", target.Kind), zap.Int64("id", target.ID), zap.Error(err))
		report(ctx, err)
		c.mu.Lock()
		c.ui.Notify(MsgDeleteFailed)
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	c.ui.Notify(MsgDeleted)
	if cur := c.st.Delete.Confirm; cur != nil && *cur == target {
		c.st.Delete.Confirm = nil
		c.ui.ShowDeleteConfirm(nil)
	}
	c.mu.Unlock()
	c.reloadDeleteList(ctx, target.Kind)
	return nil
}

func (c *Console) reloadDeleteList(ctx context.Context, kind models.Kind) {
	token := c.begin(keyDeleteList)
	items, err := c.gw.List(ctx, kind, gateway.Filter{})
	c.finish(ctx, keyDeleteList, token, err, func() {
		// пока шёл запрос, могли выбрать другой вид
		if c.st.Delete.Kind != kind {
			return
		}
		tbl := view.SelectorTable(kind, view.SelectorDelete, items)
		if cf := c.st.Delete.Confirm; cf != nil {
			tbl = tbl.Select(cf.ID)
		}
		c.st.Delete.Table = tbl
		c.ui.ShowTable(TargetDeleteList, tbl)
	})
}

func hasRow(t view.Table, id int64) bool {
	for _, r := range t.Rows {
		if r.ID == id {
			return true
		}
	}
	return false
}
