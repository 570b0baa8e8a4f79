package grpcserver

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"google.golang.org/grpc"
)

// Client requests catchup data from a remote catchup server
type Client struct {
	address    string
	connection *grpc.ClientConn
}

// Connect dials the catchup server at address
func Connect(address string, maxMessageSize int) (*Client, error) {
	const dialTimeout = 30 * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	connection, err := grpc.DialContext(ctx, address, grpc.WithInsecure(), grpc.WithBlock(),
		grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(maxMessageSize)))
	if err != nil {
		return nil, errors.Wrapf(err, "error connecting to %s", address)
	}
	return NewClient(address, connection), nil
}

// NewClient creates a Client over an established connection
func NewClient(address string, connection *grpc.ClientConn) *Client {
	return &Client{address: address, connection: connection}
}

func (c *Client) String() string {
	return c.address
}

// Close closes the connection to the server
func (c *Client) Close() error {
	return c.connection.Close()
}

func (c *Client) invoke(ctx context.Context, method string, request interface{}, response interface{}) error {
	err := c.connection.Invoke(ctx, method, request, response, grpc.CallContentSubtype(codecName))
	if err != nil {
		return errors.Wrapf(err, "error calling %s on %s", method, c.address)
	}
	return nil
}

// RequestCatchupChain requests a catchup chain
func (c *Client) RequestCatchupChain(ctx context.Context, request *externalapi.CatchupRequest) (
	*externalapi.CatchupChain, error) {

	chain := &externalapi.CatchupChain{}
	err := c.invoke(ctx, methodGetCatchupChain, request, chain)
	if err != nil {
		return nil, err
	}
	return chain, nil
}

// RequestWitnessProof requests a witness proof. It returns a nil proof if
// the peer reports the requester is already current.
func (c *Client) RequestWitnessProof(ctx context.Context, witnesses []string, lastStableMCI uint64) (
	*externalapi.WitnessProof, error) {

	response := &WitnessProofResponse{}
	err := c.invoke(ctx, methodGetWitnessProof, &WitnessProofRequest{
		Witnesses:     witnesses,
		LastStableMCI: lastStableMCI,
	}, response)
	if err != nil {
		return nil, err
	}
	if response.IsCurrent {
		return nil, nil
	}
	if response.Proof == nil {
		return nil, errors.Errorf("%s sent an empty witness proof", c.address)
	}
	return response.Proof, nil
}

// RequestHashTree requests a page of a hash tree
func (c *Client) RequestHashTree(ctx context.Context, request *externalapi.HashTreeRequest) (
	*externalapi.HashTreeResponse, error) {

	response := &externalapi.HashTreeResponse{}
	err := c.invoke(ctx, methodGetHashTree, request, response)
	if err != nil {
		return nil, err
	}
	return response, nil
}

// RequestJoint requests the joint of unitHash
func (c *Client) RequestJoint(ctx context.Context, unitHash *externalapi.DomainHash) (
	*externalapi.DomainJoint, error) {

	joint := &externalapi.DomainJoint{}
	err := c.invoke(ctx, methodGetJoint, &JointRequest{UnitHash: unitHash}, joint)
	if err != nil {
		return nil, err
	}
	return joint, nil
}

// RequestFreeUnits requests the free units of the peer
func (c *Client) RequestFreeUnits(ctx context.Context) ([]*externalapi.DomainHash, error) {
	response := &FreeUnitsResponse{}
	err := c.invoke(ctx, methodGetFreeUnits, &FreeUnitsRequest{}, response)
	if err != nil {
		return nil, err
	}
	return response.FreeUnits, nil
}
