package grpc

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dmitrijs2005/mls/internal/common"
	"github.com/dmitrijs2005/mls/internal/server/leases"
	"github.com/dmitrijs2005/mls/internal/server/protocol"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// AdminClient talks to the admin API with a fixed access token.
type AdminClient struct {
	conn        *grpc.ClientConn
	client      AdminServiceClient
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (c *AdminClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	return invoker(withAccessToken(ctx, c.accessToken), method, req, reply, cc, opts...)
}

// NewAdminClient prepares a client for target; extra dial options are
// appended after the defaults.
func NewAdminClient(target, accessToken string, opts ...grpc.DialOption) (*AdminClient, error) {
	c := &AdminClient{accessToken: accessToken}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = NewAdminServiceClient(conn)
	return c, nil
}

func (c *AdminClient) Close() error {
	return c.conn.Close()
}

func (c *AdminClient) ListLeases(ctx context.Context) ([]leases.Lease, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	resp, err := c.client.ListLeases(ctx, &emptypb.Empty{})
	if err != nil {
		return nil, err
	}
	return decodeLeases(resp)
}

func (c *AdminClient) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := c.client.Shutdown(ctx, &emptypb.Empty{})
	return err
}

func decodeLeases(s *structpb.Struct) ([]leases.Lease, error) {
	items := s.GetFields()["leases"].GetListValue().GetValues()

	out := make([]leases.Lease, 0, len(items))
	for i, item := range items {
		fields := item.GetStructValue().GetFields()
		exp, err := time.Parse(protocol.TimeLayout, fields["expires"].GetStringValue())
		if err != nil {
			return nil, fmt.Errorf("lease %d: %w", i, err)
		}
		out = append(out, leases.Lease{UserID: fields["user"].GetStringValue(), ExpiresAt: exp})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}
