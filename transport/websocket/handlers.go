package websocket

import (
	"context"
	"encoding/json"
	"fmt"
)

func (that *Server) handleNewGame(ctx context.Context, c *client, msg *Message) error {
	log := that.logger.With("method", "handleNewGame")

	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return that.sendErrorResponse(c, msg.Action, "malformed payload")
	}

	if payloadReq.Size == nil {
		log.Error("Size is missing in payload")
		return that.sendErrorResponse(c, msg.Action, "size is required")
	}

	session, events, err := that.games.Start(ctx, *payloadReq.Size)
	if err != nil {
		log.Info("failed to start game", "error", err)
		return that.sendErrorResponse(c, msg.Action, err.Error())
	}

	that.join(session.ID, c)

	if err = c.send(msg.Action, sessionPayload(session, events)); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Info("game started", "sessionID", session.ID)

	return nil
}

func (that *Server) handleGameTurn(ctx context.Context, c *client, msg *Message) error {
	log := that.logger.With("method", "handleGameTurn")

	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return that.sendErrorResponse(c, msg.Action, "malformed payload")
	}

	if payloadReq.SessionID == "" || payloadReq.Cell == nil {
		log.Error("SessionID or Cell is missing in payload")
		return that.sendErrorResponse(c, msg.Action, "session_id and cell are required")
	}

	log = log.With("sessionID", payloadReq.SessionID)

	// events of the move reach every member through Render
	if err := that.joinExisting(ctx, c, payloadReq.SessionID); err != nil {
		return that.sendErrorResponse(c, msg.Action, err.Error())
	}

	session, _, err := that.games.HandleCellSelected(ctx, payloadReq.SessionID, *payloadReq.Cell)
	if err != nil {
		log.Debug("move rejected", "cell", *payloadReq.Cell, "error", err)
		return that.sendErrorResponse(c, msg.Action, err.Error())
	}

	if err = c.send(msg.Action, sessionPayload(session, nil)); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	return nil
}

func (that *Server) handleGameState(ctx context.Context, c *client, msg *Message) error {
	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return that.sendErrorResponse(c, msg.Action, "malformed payload")
	}

	session, err := that.games.Get(ctx, payloadReq.SessionID)
	if err != nil {
		return that.sendErrorResponse(c, msg.Action, err.Error())
	}

	that.join(session.ID, c)

	if err = c.send(msg.Action, sessionPayload(session, nil)); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	return nil
}

func (that *Server) handleRestart(ctx context.Context, c *client, msg *Message) error {
	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return that.sendErrorResponse(c, msg.Action, "malformed payload")
	}

	if payloadReq.SessionID == "" || payloadReq.Size == nil {
		return that.sendErrorResponse(c, msg.Action, "session_id and size are required")
	}

	if err := that.joinExisting(ctx, c, payloadReq.SessionID); err != nil {
		return that.sendErrorResponse(c, msg.Action, err.Error())
	}

	session, _, err := that.games.Restart(ctx, payloadReq.SessionID, *payloadReq.Size)
	if err != nil {
		return that.sendErrorResponse(c, msg.Action, err.Error())
	}

	if err = c.send(msg.Action, sessionPayload(session, nil)); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	return nil
}

func (that *Server) handleGameLeave(ctx context.Context, c *client, msg *Message) error {
	log := that.logger.With("method", "handleGameLeave")

	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return that.sendErrorResponse(c, msg.Action, "malformed payload")
	}

	if payloadReq.SessionID == "" {
		return that.sendErrorResponse(c, msg.Action, "session_id is required")
	}

	if _, err := that.games.Terminate(ctx, payloadReq.SessionID); err != nil {
		log.Error("failed to terminate game", "sessionID", payloadReq.SessionID, "error", err)
		return that.sendErrorResponse(c, msg.Action, "failed to terminate game")
	}

	that.dropSession(payloadReq.SessionID)

	if err := c.send(msg.Action, Payload{SessionID: payloadReq.SessionID}); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Info("game terminated", "sessionID", payloadReq.SessionID)

	return nil
}

// joinExisting adds c to the members of a session that is known to the game manager.
func (that *Server) joinExisting(ctx context.Context, c *client, sessionID string) error {
	if _, err := that.games.Get(ctx, sessionID); err != nil {
		return err
	}

	that.join(sessionID, c)

	return nil
}

func (that *Server) sendErrorResponse(c *client, action, errorMsg string) error {
	if err := c.send(action, Payload{Error: errorMsg}); err != nil {
		return fmt.Errorf("failed to send error response: %w", err)
	}

	return nil
}
