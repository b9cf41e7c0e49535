package gateway

import (
	"context"
	"fmt"

	"boarbot/internal/domain"
	"boarbot/internal/protocol/wire"
)

func (c *Client) FetchQRCode(ctx context.Context) (domain.QRChallenge, error) {
	var out domain.QRChallenge
	err := c.call(ctx, wire.TypeQRCodeFetch, wire.Empty{}, wire.TypeQRCodeImage, &out)
	return out, err
}

func (c *Client) QueryQRCodeResult(ctx context.Context, sig []byte) (domain.QRState, error) {
	var out domain.QRState
	err := c.call(ctx, wire.TypeQRCodeQuery, wire.QRCodeQueryPayload{Sig: sig}, wire.TypeQRCodeState, &out)
	return out, err
}

func (c *Client) QRCodeLogin(ctx context.Context, confirmed domain.QRConfirmed) (domain.LoginResult, error) {
	var out domain.LoginResult
	err := c.call(ctx, wire.TypeQRCodeLogin, confirmed, wire.TypeLoginResult, &out)
	return out, err
}

func (c *Client) DeviceLockLogin(ctx context.Context) (domain.LoginResult, error) {
	var out domain.LoginResult
	err := c.call(ctx, wire.TypeDeviceLockLogin, wire.Empty{}, wire.TypeLoginResult, &out)
	return out, err
}

// TokenLogin resumes a session. Any result other than success is an error.
func (c *Client) TokenLogin(ctx context.Context, token domain.SessionToken) error {
	var res domain.LoginResult
	if err := c.call(ctx, wire.TypeTokenLogin, token, wire.TypeLoginResult, &res); err != nil {
		return err
	}
	if res.Kind != domain.LoginSuccess {
		if res.Message != "" {
			return fmt.Errorf("token rejected: %s: %s", res.Kind, res.Message)
		}
		return fmt.Errorf("token rejected: %s", res.Kind)
	}
	return nil
}

func (c *Client) AfterLogin(ctx context.Context) error {
	return c.call(ctx, wire.TypeAfterLogin, wire.Empty{}, wire.TypeOK, nil)
}

func (c *Client) GenToken(ctx context.Context) (domain.SessionToken, error) {
	var out domain.SessionToken
	err := c.call(ctx, wire.TypeGenToken, wire.Empty{}, wire.TypeToken, &out)
	return out, err
}

func (c *Client) FriendList(ctx context.Context) ([]domain.Friend, error) {
	var out wire.FriendListPayload
	if err := c.call(ctx, wire.TypeFriendList, wire.Empty{}, wire.TypeFriendList, &out); err != nil {
		return nil, err
	}
	return out.Friends, nil
}

func (c *Client) GroupList(ctx context.Context) ([]domain.Group, error) {
	var out wire.GroupListPayload
	if err := c.call(ctx, wire.TypeGroupList, wire.Empty{}, wire.TypeGroupList, &out); err != nil {
		return nil, err
	}
	return out.Groups, nil
}

func (c *Client) SendFriendMessage(ctx context.Context, to domain.UIN, elements domain.MessageChain) error {
	var receipt wire.MessageReceiptPayload
	return c.call(ctx, wire.TypeSendFriendMessage, wire.SendFriendMessagePayload{
		To:       to,
		Elements: elements,
	}, wire.TypeMessageReceipt, &receipt)
}
