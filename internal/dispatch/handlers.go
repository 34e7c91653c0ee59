package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"productinventory/internal/item"
)

var errNotObject = errors.New("body must be a JSON object")

func (d *Dispatcher) health(context.Context, Request) Response {
	return buildResponse(http.StatusOK, nil)
}

func (d *Dispatcher) getItem(ctx context.Context, req Request) Response {
	id := req.QueryStringParameters[item.KeyAttribute]
	it, found, err := d.store.Get(ctx, id)
	if err != nil {
		return d.storeFailure(ctx, "get", err)
	}
	if !found {
		if d.missingAsNotFound {
			return errorResponse(http.StatusNotFound, msgProductNotFound, nil)
		}
		return buildResponse(http.StatusOK, nil)
	}
	return buildResponse(http.StatusOK, it)
}

func (d *Dispatcher) listItems(ctx context.Context, _ Request) Response {
	items, err := d.store.Scan(ctx)
	if err != nil {
		return d.storeFailure(ctx, "scan", err)
	}
	if items == nil {
		items = []item.Item{}
	}
	return buildResponse(http.StatusOK, listBody{Products: items})
}

func (d *Dispatcher) saveItem(ctx context.Context, req Request) Response {
	var it item.Item
	if err := decodeBody(req.Body, &it); err != nil {
		return errorResponse(http.StatusBadRequest, msgInvalidBody, err)
	}
	if it == nil {
		return errorResponse(http.StatusBadRequest, msgInvalidBody, errNotObject)
	}
	if _, ok := it.ID(); !ok {
		return errorResponse(http.StatusBadRequest, msgInvalidID, nil)
	}
	if err := d.store.Put(ctx, it); err != nil {
		return d.storeFailure(ctx, "put", err)
	}
	return buildResponse(http.StatusOK, saveBody{Operation: "SAVE", Message: msgSuccess, Item: it})
}

type modifyRequest struct {
	ProductID   string          `json:"productid"`
	UpdateKey   string          `json:"updateKey"`
	UpdateValue json.RawMessage `json:"updateValue"`
}

func (d *Dispatcher) modifyItem(ctx context.Context, req Request) Response {
	var in modifyRequest
	if err := decodeBody(req.Body, &in); err != nil {
		return errorResponse(http.StatusBadRequest, msgInvalidBody, err)
	}
	if err := item.ValidateFieldName(in.UpdateKey); err != nil {
		return errorResponse(http.StatusBadRequest, msgInvalidField, err)
	}
	// An absent updateValue sets the field to null.
	value, err := item.ParseValue(in.UpdateValue)
	if err != nil {
		return errorResponse(http.StatusBadRequest, msgInvalidBody, err)
	}
	attrs, err := d.store.Update(ctx, in.ProductID, in.UpdateKey, value)
	if err != nil {
		return d.storeFailure(ctx, "update", err)
	}
	return buildResponse(http.StatusOK, updateBody{Operation: "UPDATE", Message: msgSuccess, UpdatedAttributes: attrs})
}

type deleteRequest struct {
	ProductID string `json:"productid"`
}

func (d *Dispatcher) deleteItem(ctx context.Context, req Request) Response {
	var in deleteRequest
	if err := decodeBody(req.Body, &in); err != nil {
		return errorResponse(http.StatusBadRequest, msgInvalidBody, err)
	}
	prev, err := d.store.Delete(ctx, in.ProductID)
	if err != nil {
		return d.storeFailure(ctx, "delete", err)
	}
	return buildResponse(http.StatusOK, deleteBody{Operation: "DELETE", Message: msgSuccess, Item: prev})
}

func decodeBody(body string, dst any) error {
	if body == "" {
		return errors.New("body is empty")
	}
	if err := json.Unmarshal([]byte(body), dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}
